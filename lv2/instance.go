package lv2

import (
	"errors"
	"fmt"
)

// Instance is a running plugin. Run may only be called between Activate
// and Deactivate, after every mandatory port has been connected.
type Instance struct {
	world      *World
	key        libKey
	descriptor Descriptor
	handle     Handle
	optional   []bool
	connected  []bool
	active     bool
	freed      bool
}

// Instantiate loads the plugin's library and creates an instance at
// sampleRate. The library stays open until every instance from it is
// freed.
func (p *Plugin) Instantiate(sampleRate float64, features []Feature) (*Instance, error) {
	w := p.world
	log := w.log.WithField("plugin", p.uri.str)
	libURI := p.LibraryURI()
	if libURI == nil {
		return nil, fmt.Errorf("%w: <%s> has no lv2:binary", ErrNoLibrary, p.uri.str)
	}
	bundlePath, err := p.bundleURI.FilePath()
	if err != nil {
		return nil, fmt.Errorf("%w: bundle <%s>: %v", ErrNoLibrary, p.bundleURI.str, err)
	}
	lib, key, err := w.openLibrary(libURI.str, bundlePath, features)
	if err != nil {
		return nil, err
	}

	var descriptor Descriptor
	for i := uint32(0); ; i++ {
		d := lib.Descriptor(i)
		if d == nil {
			break
		}
		if d.URI() == p.uri.str {
			descriptor = d
			break
		}
	}
	if descriptor == nil {
		log.Errorf("No plugin <%s> in %s", p.uri.str, libURI.str)
		w.releaseLibrary(key)
		return nil, fmt.Errorf("%w: <%s> in %s", ErrNoDescriptor, p.uri.str, libURI.str)
	}

	handle, err := descriptor.Instantiate(sampleRate, bundlePath, features)
	if err == nil && handle == nil {
		err = errors.New("descriptor returned no handle")
	}
	if err != nil {
		log.WithField("err", err).Errorf("Failed to instantiate")
		w.releaseLibrary(key)
		return nil, fmt.Errorf("%w: <%s>: %v", ErrInstantiate, p.uri.str, err)
	}

	n := p.NumPorts()
	inst := &Instance{
		world:      w,
		key:        key,
		descriptor: descriptor,
		handle:     handle,
		optional:   make([]bool, n),
		connected:  make([]bool, n),
	}
	optional := NewURI(URIConnectionOptional)
	for i := uint32(0); i < n; i++ {
		inst.optional[i] = p.ports[i].HasProperty(optional)
		// Start from a known state so a plugin never sees stale buffers.
		handle.ConnectPort(i, nil)
	}
	return inst, nil
}

// URI returns the plugin URI of the instance.
func (i *Instance) URI() string { return i.descriptor.URI() }

// Descriptor returns the descriptor the instance was created from.
func (i *Instance) Descriptor() Descriptor { return i.descriptor }

// Handle returns the plugin's instance handle.
func (i *Instance) Handle() Handle { return i.handle }

// ConnectPort connects port index to a buffer. Connecting nil
// disconnects it.
func (i *Instance) ConnectPort(index uint32, data any) error {
	if i.freed {
		return ErrClosed
	}
	if int(index) >= len(i.connected) {
		return fmt.Errorf("lv2: port %d out of range (%d ports)", index, len(i.connected))
	}
	i.handle.ConnectPort(index, data)
	i.connected[index] = data != nil
	return nil
}

// Activate prepares the instance to run.
func (i *Instance) Activate() {
	if i.freed || i.active {
		return
	}
	i.handle.Activate()
	i.active = true
}

// Run processes sampleCount frames.
func (i *Instance) Run(sampleCount uint32) error {
	if i.freed {
		return ErrClosed
	}
	if !i.active {
		return ErrNotActivated
	}
	for index, ok := range i.connected {
		if !ok && !i.optional[index] {
			return fmt.Errorf("%w: port %d", ErrPortsNotConnected, index)
		}
	}
	i.handle.Run(sampleCount)
	return nil
}

// Deactivate stops the instance. It may be activated again.
func (i *Instance) Deactivate() {
	if i.freed || !i.active {
		return
	}
	i.handle.Deactivate()
	i.active = false
}

// ExtensionData returns the extension interface for uri, or nil.
func (i *Instance) ExtensionData(uri string) any {
	if provider, ok := i.descriptor.(ExtensionDataProvider); ok {
		return provider.ExtensionData(uri)
	}
	return nil
}

// Free deactivates and destroys the instance and releases its library.
func (i *Instance) Free() {
	if i.freed {
		return
	}
	i.Deactivate()
	i.handle.Cleanup()
	i.freed = true
	i.world.releaseLibrary(i.key)
}
