package lv2

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// World is a session of discovered LV2 data. It owns the statement store,
// the plugins found in loaded bundles and every value borrowed from them.
//
// A World is not safe for concurrent use. Plugins load their data lazily,
// so even read accessors may write to the store.
type World struct {
	opts  Options
	log   *logrus.Entry
	store *store.Store
	uris  uris
	lang  string

	plugins      *Collection[*Plugin]
	zombies      map[string]*Plugin
	classes      *Collection[*PluginClass]
	rootClass    *PluginClass
	specs        []*specification
	loadedFiles  map[string]bool
	libs         map[libKey]*libEntry
	dynManifests []*dynManifest

	blankCounter int
	closed       bool
}

type specification struct {
	uri      *Node
	bundle   *Node
	dataURIs []*Node
}

// New returns an empty World configured by opts.
func New(opts ...Option) *World {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.OpenLibrary == nil {
		o.OpenLibrary = openGoPlugin
	}
	w := &World{
		opts:        o,
		log:         o.Logger.WithField("component", "lv2"),
		store:       store.New(),
		uris:        newURIs(),
		lang:        normalizeLang(o.Lang),
		plugins:     NewCollection(comparePlugins),
		zombies:     map[string]*Plugin{},
		classes:     NewCollection(comparePluginClasses),
		loadedFiles: map[string]bool{},
		libs:        map[libKey]*libEntry{},
	}
	w.rootClass = &PluginClass{world: w, uri: NewURI(URIPlugin), label: NewString("Plugin")}
	return w
}

// SetOption changes a World option by URI. Values must be booleans for
// the dyn-manifest and filter-lang options and strings for lang and
// lv2-path. Rejected values leave the World unchanged.
func (w *World) SetOption(uri string, value *Node) error {
	log := w.log.WithField("option", uri)
	switch uri {
	case OptionDynManifest, OptionFilterLang:
		b, err := value.AsBool()
		if err != nil {
			log.Warnf("Option value is not a boolean")
			return fmt.Errorf("option %s: %w", uri, err)
		}
		if uri == OptionDynManifest {
			w.opts.DynManifest = b
		} else {
			w.opts.FilterLang = b
		}
	case OptionLang, OptionLV2Path:
		s, err := value.AsString()
		if err != nil {
			log.Warnf("Option value is not a string")
			return fmt.Errorf("option %s: %w", uri, err)
		}
		if uri == OptionLang {
			w.opts.Lang = s
			w.lang = normalizeLang(s)
		} else {
			w.opts.LV2Path = s
		}
	default:
		log.Warnf("Unrecognized world option")
		return fmt.Errorf("%w: %s", ErrUnknownOption, uri)
	}
	return nil
}

// Lang returns the normalized language tag used for string selection.
func (w *World) Lang() string { return w.lang }

// Logger returns the World's log entry.
func (w *World) Logger() *logrus.Entry { return w.log }

// Plugins returns the active plugins, ordered by URI.
func (w *World) Plugins() *Collection[*Plugin] { return w.plugins }

// PluginByURI returns the active plugin with the given URI.
func (w *World) PluginByURI(uri string) *Plugin {
	p, _ := w.plugins.Search(func(p *Plugin) int { return strings.Compare(p.uri.str, uri) })
	return p
}

// PluginClass returns the root class, lv2:Plugin.
func (w *World) PluginClass() *PluginClass { return w.rootClass }

// PluginClasses returns every class read from loaded data.
func (w *World) PluginClasses() *Collection[*PluginClass] { return w.classes }

// Close releases plugin libraries and dynamic manifests and empties the
// World. Values borrowed from it must not be used afterwards.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	var errs []error
	for _, dm := range w.dynManifests {
		errs = append(errs, dm.close())
	}
	w.dynManifests = nil
	for key, entry := range w.libs {
		if err := entry.lib.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key.uri, err))
		}
		delete(w.libs, key)
	}
	w.store = store.New()
	w.plugins = NewCollection(comparePlugins)
	w.zombies = map[string]*Plugin{}
	w.classes = NewCollection(comparePluginClasses)
	w.specs = nil
	w.loadedFiles = map[string]bool{}
	return errors.Join(errs...)
}

// nextBlankPrefix returns a fresh prefix for the blank node labels of one
// document, so labels from separate documents never collide.
func (w *World) nextBlankPrefix() string {
	w.blankCounter++
	return fmt.Sprintf("b%d", w.blankCounter)
}

func (w *World) decodeOptions(source string) rdf.DecodeOptions {
	opts := w.opts.Decode
	opts.BlankPrefix = w.nextBlankPrefix()
	opts.Source = source
	return opts
}

// loadFile parses the Turtle file at uri into graph unless it has been
// loaded already. loaded reports whether a parse happened.
func (w *World) loadFile(uri string, graph rdf.Term) (loaded bool, err error) {
	if w.loadedFiles[uri] {
		w.log.WithField("file", uri).Debugf("File already loaded")
		return false, nil
	}
	path, err := rdf.FilePath(uri)
	if err != nil {
		return false, err
	}
	loader := store.NewLoader(w.store, graph)
	if err := rdf.ReadTurtleFile(path, uri, loader, w.decodeOptions(path)); err != nil {
		return false, err
	}
	w.loadedFiles[uri] = true
	w.log.WithField("file", uri).Debugf("Loaded %d statements", loader.Added)
	return true, nil
}

// loadReader parses an in-memory document into graph.
func (w *World) loadReader(r io.Reader, base, source string, graph rdf.Term) error {
	return rdf.ReadTurtle(r, base, store.NewLoader(w.store, graph), w.decodeOptions(source))
}

// skimFile reads a file through sink without touching the store.
func (w *World) skimFile(uri string, sink rdf.Sink) error {
	path, err := rdf.FilePath(uri)
	if err != nil {
		return err
	}
	return rdf.ReadTurtleFile(path, uri, sink, w.decodeOptions(path))
}

// LoadResource parses the rdfs:seeAlso files of resource, such as the
// files describing a preset. It returns the number of files read.
func (w *World) LoadResource(resource *Node) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if !resource.IsResource() {
		w.log.Errorf("Node %q is not a resource", resource.String())
		return 0, fmt.Errorf("%w: %s", ErrNotResource, resource.String())
	}
	n := 0
	var errs []error
	for _, file := range w.seeAlsoFiles(resource) {
		loaded, err := w.loadFile(file, rdf.IRI{Value: file})
		if err != nil {
			w.log.WithField("file", file).WithField("err", err).Errorf("Error loading resource file")
			errs = append(errs, err)
			continue
		}
		if loaded {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// UnloadResource drops the statements read by LoadResource. It returns
// the number of files dropped.
func (w *World) UnloadResource(resource *Node) (int, error) {
	if !resource.IsResource() {
		w.log.Errorf("Node %q is not a resource", resource.String())
		return 0, fmt.Errorf("%w: %s", ErrNotResource, resource.String())
	}
	n := 0
	for _, file := range w.seeAlsoFiles(resource) {
		if w.unloadFile(file) {
			n++
		}
	}
	return n, nil
}

func (w *World) seeAlsoFiles(resource *Node) []string {
	var files []string
	seen := map[string]bool{}
	for q := range w.store.Match(store.Pattern{S: resource.term(), P: w.uris.rdfsSeeAlso}) {
		iri, ok := q.O.(rdf.IRI)
		if !ok {
			w.log.Errorf("rdfs:seeAlso of %s is not a URI", resource.String())
			continue
		}
		if !seen[iri.Value] {
			seen[iri.Value] = true
			files = append(files, iri.Value)
		}
	}
	return files
}

func (w *World) unloadFile(uri string) bool {
	if !w.loadedFiles[uri] {
		return false
	}
	delete(w.loadedFiles, uri)
	w.store.EraseGraph(rdf.IRI{Value: uri})
	return true
}

// Symbol returns the lv2:symbol of subject, or derives one from the last
// segment of its URI with every invalid character replaced by '_'.
func (w *World) Symbol(subject *Node) *Node {
	if sym := w.getNode(subject, w.uris.lv2Symbol); sym != nil {
		return sym
	}
	if !subject.IsURI() {
		return nil
	}
	uri := subject.str
	var str string
	switch {
	case strings.Contains(uri, "#"):
		str = uri[strings.IndexByte(uri, '#')+1:]
	case strings.Contains(uri, "?"):
		str = uri[strings.IndexByte(uri, '?')+1:]
	default:
		str = uri[strings.LastIndexByte(uri, '/')+1:]
	}
	if str == "" {
		str = "_"
	}
	sym := []byte(str)
	for i, c := range sym {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || i > 0 && c >= '0' && c <= '9') {
			sym[i] = '_'
		}
	}
	return NewString(string(sym))
}
