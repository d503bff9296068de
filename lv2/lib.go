package lv2

import (
	"fmt"
	"plugin"
)

// Feature is a host feature passed to plugins at instantiation.
type Feature struct {
	URI  string
	Data any
}

// Descriptor describes one plugin type provided by a library.
type Descriptor interface {
	URI() string
	Instantiate(sampleRate float64, bundlePath string, features []Feature) (Handle, error)
}

// ExtensionDataProvider is implemented by descriptors that expose
// extension interfaces.
type ExtensionDataProvider interface {
	ExtensionData(uri string) any
}

// Handle is one running plugin instance.
type Handle interface {
	ConnectPort(index uint32, data any)
	Activate()
	Run(sampleCount uint32)
	Deactivate()
	Cleanup()
}

// Library is an opened plugin binary.
type Library interface {
	// Descriptor returns the descriptor at index, or nil past the last.
	Descriptor(index uint32) Descriptor
	Close() error
}

// LibraryOpener opens the plugin binary at path for a bundle.
type LibraryOpener func(path, bundlePath string, features []Feature) (Library, error)

// Symbols looked up in Go plugin binaries.
const (
	DescriptorSymbol  = "LV2Descriptor"
	DynManifestSymbol = "LV2DynManifest"
)

type libKey struct {
	uri        string
	bundlePath string
}

type libEntry struct {
	lib  Library
	refs int
}

// openLibrary returns the cached library for (uri, bundlePath), opening
// it on first use. Every successful call must be paired with
// releaseLibrary.
func (w *World) openLibrary(uri, bundlePath string, features []Feature) (Library, libKey, error) {
	key := libKey{uri: uri, bundlePath: bundlePath}
	if entry, ok := w.libs[key]; ok {
		entry.refs++
		return entry.lib, key, nil
	}
	path, err := NewURI(uri).FilePath()
	if err != nil {
		return nil, key, fmt.Errorf("%w: %s: %v", ErrNoLibrary, uri, err)
	}
	lib, err := w.opts.OpenLibrary(path, bundlePath, features)
	if err != nil {
		w.log.WithField("file", path).WithField("err", err).Errorf("Failed to open library")
		return nil, key, fmt.Errorf("%w: %s: %v", ErrNoLibrary, path, err)
	}
	w.libs[key] = &libEntry{lib: lib, refs: 1}
	return lib, key, nil
}

func (w *World) releaseLibrary(key libKey) {
	entry, ok := w.libs[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	delete(w.libs, key)
	if err := entry.lib.Close(); err != nil {
		w.log.WithField("err", err).Warnf("Error closing library <%s>", key.uri)
	}
}

// openGoPlugin loads a Go plugin built with -buildmode=plugin. The plugin
// exports LV2Descriptor as func(uint32) lv2.Descriptor and may export
// LV2DynManifest as func([]lv2.Feature) (lv2.DynManifest, error).
func openGoPlugin(path, _ string, _ []Feature) (Library, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(DescriptorSymbol)
	if err != nil {
		return nil, err
	}
	descriptor, ok := sym.(func(uint32) Descriptor)
	if !ok {
		return nil, fmt.Errorf("%s: symbol %s has type %T", path, DescriptorSymbol, sym)
	}
	return &goPluginLibrary{plugin: p, descriptor: descriptor}, nil
}

type goPluginLibrary struct {
	plugin     *plugin.Plugin
	descriptor func(uint32) Descriptor
}

func (l *goPluginLibrary) Descriptor(index uint32) Descriptor { return l.descriptor(index) }

// Close is a no-op: Go plugins stay mapped for the life of the process.
func (l *goPluginLibrary) Close() error { return nil }

func (l *goPluginLibrary) OpenDynManifest(features []Feature) (DynManifest, error) {
	sym, err := l.plugin.Lookup(DynManifestSymbol)
	if err != nil {
		return nil, err
	}
	open, ok := sym.(func([]Feature) (DynManifest, error))
	if !ok {
		return nil, fmt.Errorf("symbol %s has type %T", DynManifestSymbol, sym)
	}
	return open(features)
}
