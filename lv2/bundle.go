package lv2

import (
	"fmt"
	"os"
	"strings"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// Version is the (minor, micro) pair a plugin declares.
type Version struct {
	Minor int64
	Micro int64
}

// Compare orders versions by minor, then micro.
func (v Version) Compare(o Version) int {
	switch {
	case v.Minor != o.Minor:
		return compareInt(v.Minor, o.Minor)
	default:
		return compareInt(v.Micro, o.Micro)
	}
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Minor, v.Micro) }

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// LoadAll loads every bundle on the search path, then reads the
// specifications and the plugin class tree. The path comes from
// OptLV2Path, else LV2_PATH, else DefaultLV2Path. Errors in individual
// bundles are logged and skipped.
func (w *World) LoadAll() {
	if w.closed {
		w.log.Warnf("LoadAll on a closed world")
		return
	}
	path := w.opts.LV2Path
	if path == "" {
		path = os.Getenv("LV2_PATH")
	}
	if path == "" {
		path = DefaultLV2Path()
	}
	for _, dir := range searchDirs(path) {
		bundles, err := bundleDirs(dir)
		if err != nil {
			w.log.WithField("err", err).Debugf("Skipping search directory %s", dir)
			continue
		}
		for _, b := range bundles {
			// LoadBundle logs its own failures.
			_ = w.LoadBundle(NewURI(rdf.FileURI(b) + "/"))
		}
	}
	w.LoadSpecifications()
	w.LoadPluginClasses()
	w.markReplaced()
}

func bundleURIOf(bundle *Node) string {
	uri := bundle.str
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri
}

// LoadBundle reads the manifest of one bundle and registers the plugins
// it declares. When a plugin is already loaded from another bundle, the
// higher (minor, micro) version wins: a newer bundle replaces the old one,
// an older bundle is dropped entirely. Loading a bundle twice is a no-op.
func (w *World) LoadBundle(bundle *Node) error {
	if w.closed {
		return ErrClosed
	}
	if !bundle.IsURI() {
		w.log.Errorf("Bundle %q is not a URI", bundle.String())
		return fmt.Errorf("bundle %q: %w", bundle.String(), ErrWrongKind)
	}
	bundleURI := bundleURIOf(bundle)
	manifestURI := bundleURI + "manifest.ttl"
	graph := rdf.IRI{Value: bundleURI}
	log := w.log.WithField("bundle", bundleURI)

	if w.loadedFiles[manifestURI] {
		log.Debugf("Bundle already loaded")
		return nil
	}
	if _, err := w.loadFile(manifestURI, graph); err != nil {
		w.store.EraseGraph(graph)
		log.WithField("err", err).Errorf("Error reading %s", manifestURI)
		return err
	}

	dyn := w.loadDynManifests(bundleURI, manifestURI)

	var subjects []rdf.Term
	for q := range w.store.Match(store.Pattern{P: w.uris.rdfType, O: w.uris.lv2Plugin, G: graph}) {
		subjects = append(subjects, q.S)
	}

	var replaced []string
	for _, s := range subjects {
		uri, ok := s.(rdf.IRI)
		if !ok {
			continue
		}
		old := w.PluginByURI(uri.Value)
		if old == nil || old.bundleURI.str == bundleURI {
			continue
		}
		newVersion := w.bundleVersion(bundleURI, uri)
		oldVersion := w.bundleVersion(old.bundleURI.str, uri)
		switch c := newVersion.Compare(oldVersion); {
		case c > 0:
			log.WithField("plugin", uri.Value).Warnf("Replacing version %s from <%s> with %s",
				oldVersion, old.bundleURI.str, newVersion)
			replaced = append(replaced, old.bundleURI.str)
		case c < 0:
			log.WithField("plugin", uri.Value).Warnf("Ignoring bundle, version %s is older than %s from <%s>",
				newVersion, oldVersion, old.bundleURI.str)
			w.dropBundleGraph(bundleURI)
			for _, d := range dyn {
				d.release()
			}
			return nil
		}
	}

	for _, old := range replaced {
		if err := w.UnloadBundle(NewURI(old)); err != nil {
			log.WithField("err", err).Errorf("Error unloading <%s>", old)
		}
	}

	for _, s := range subjects {
		if uri, ok := s.(rdf.IRI); ok {
			w.addPlugin(uri.Value, bundleURI, manifestURI, nil)
		} else {
			log.Warnf("Plugin subject %s is not a URI", s.String())
		}
	}
	for _, d := range dyn {
		for _, uri := range d.plugins {
			w.addPlugin(uri, bundleURI, manifestURI, d)
		}
		d.release()
	}

	w.scanSpecifications(bundleURI, graph)
	return nil
}

// bundleVersion skims a bundle's manifest, and the files it points to for
// the plugin, for lv2:minorVersion and lv2:microVersion. A version missing
// either number is 0.0.
func (w *World) bundleVersion(bundleURI string, plugin rdf.IRI) Version {
	skim := store.NewSkimmer(plugin, nil, store.Objects, URIMinorVersion, URIMicroVersion, URIRDFSSeeAlso)
	if err := w.skimFile(bundleURI+"manifest.ttl", skim); err != nil {
		w.log.WithField("bundle", bundleURI).WithField("err", err).Debugf("Cannot skim manifest for version")
	}
	for _, file := range skim.Nodes(URIRDFSSeeAlso) {
		if iri, ok := file.(rdf.IRI); ok {
			if err := w.skimFile(iri.Value, skim); err != nil {
				w.log.WithField("file", iri.Value).WithField("err", err).Debugf("Cannot skim data file for version")
			}
		}
	}
	minor, okMinor := skim.First(URIMinorVersion)
	micro, okMicro := skim.First(URIMicroVersion)
	if !okMinor || !okMicro {
		return Version{}
	}
	minorNode, microNode := nodeFromTerm(minor), nodeFromTerm(micro)
	v := Version{}
	v.Minor, _ = minorNode.AsInt()
	v.Micro, _ = microNode.AsInt()
	return v
}

// addPlugin registers or refreshes a plugin discovered in a bundle.
func (w *World) addPlugin(uri, bundleURI, manifestURI string, dyn *dynManifest) {
	log := w.log.WithField("plugin", uri)
	p := w.PluginByURI(uri)
	switch {
	case p != nil && p.bundleURI.str == bundleURI:
		log.Debugf("Reloading plugin from the same bundle")
		p.reset()
	case p != nil:
		log.Warnf("Duplicate plugin, already loaded from <%s>; ignoring <%s>", p.bundleURI.str, bundleURI)
		return
	case w.zombies[uri] != nil:
		p = w.zombies[uri]
		delete(w.zombies, uri)
		p.reset()
		p.bundleURI = NewURI(bundleURI)
		w.plugins.Insert(p)
	default:
		p = newPlugin(w, NewURI(uri), NewURI(bundleURI))
		w.plugins.Insert(p)
	}

	if dyn != nil {
		p.dyn = dyn
		dyn.retain()
	}
	p.dataURIs = []*Node{NewURI(manifestURI)}
	seen := map[string]bool{manifestURI: true}
	for q := range w.objects(p.uri.term(), w.uris.rdfsSeeAlso) {
		iri, ok := q.O.(rdf.IRI)
		if !ok {
			log.Warnf("rdfs:seeAlso object %s is not a URI", q.O.String())
			continue
		}
		if !seen[iri.Value] {
			seen[iri.Value] = true
			p.dataURIs = append(p.dataURIs, NewURI(iri.Value))
		}
	}
}

func (w *World) scanSpecifications(bundleURI string, graph rdf.IRI) {
	seen := map[string]bool{}
	for _, class := range []rdf.IRI{w.uris.lv2Specification, w.uris.owlOntology} {
		for q := range w.store.Match(store.Pattern{P: w.uris.rdfType, O: class, G: graph}) {
			key := store.TermKey(q.S)
			if seen[key] {
				continue
			}
			seen[key] = true
			spec := &specification{uri: nodeFromTerm(q.S), bundle: NewURI(bundleURI)}
			for f := range w.store.Match(store.Pattern{S: q.S, P: w.uris.rdfsSeeAlso, G: graph}) {
				spec.dataURIs = append(spec.dataURIs, nodeFromTerm(f.O))
			}
			w.specs = append(w.specs, spec)
		}
	}
}

// LoadSpecifications parses the data files of every specification found
// in loaded bundles. LoadAll calls it after loading bundles.
func (w *World) LoadSpecifications() {
	for _, spec := range w.specs {
		for _, file := range spec.dataURIs {
			if !file.IsURI() {
				continue
			}
			if _, err := w.loadFile(file.str, spec.bundle.term()); err != nil {
				w.log.WithField("file", file.str).WithField("err", err).Errorf("Error loading specification data")
			}
		}
	}
}

// LoadPluginClasses builds the plugin class tree from every rdfs:Class
// with a URI parent and a label. LoadAll calls it after loading bundles.
func (w *World) LoadPluginClasses() {
	for q := range w.store.Match(store.Pattern{P: w.uris.rdfType, O: w.uris.rdfsClass}) {
		class, ok := q.S.(rdf.IRI)
		if !ok {
			continue
		}
		parent := w.firstObject(class, w.uris.rdfsSubClass)
		if !parent.IsURI() {
			continue
		}
		label := w.getNode(NewURI(class.Value), w.uris.rdfsLabel)
		if !label.IsString() {
			continue
		}
		pc := &PluginClass{world: w, uri: NewURI(class.Value), parent: parent, label: label}
		if existing, ok := w.classes.Search(func(c *PluginClass) int {
			return strings.Compare(c.uri.str, class.Value)
		}); ok {
			existing.parent, existing.label = parent, label
			continue
		}
		w.classes.Insert(pc)
	}
}

func (w *World) markReplaced() {
	for p := range w.plugins.All() {
		if w.store.Contains(store.Pattern{P: w.uris.dcReplaces, O: p.uri.term()}) {
			p.replaced = true
		}
	}
}

// UnloadBundle removes everything a bundle contributed: its statements,
// its loaded files and its specifications. Its plugins become zombies,
// still usable by holders of a pointer but no longer listed. A later load
// of the same bundle revives them.
func (w *World) UnloadBundle(bundle *Node) error {
	if !bundle.IsURI() {
		return fmt.Errorf("bundle %q: %w", bundle.String(), ErrWrongKind)
	}
	bundleURI := bundleURIOf(bundle)
	for _, p := range w.plugins.Slice() {
		if p.bundleURI.str == bundleURI {
			w.plugins.Remove(p)
			w.zombies[p.uri.str] = p
		}
	}
	specs := w.specs[:0]
	for _, spec := range w.specs {
		if spec.bundle.str != bundleURI {
			specs = append(specs, spec)
		}
	}
	w.specs = specs
	if n := w.dropBundleGraph(bundleURI); n == 0 {
		w.log.WithField("bundle", bundleURI).Debugf("Unloaded bundle held no statements")
	}
	return nil
}

// dropBundleGraph erases the bundle graph and any file loaded from under
// the bundle directory. It returns the number of statements removed.
func (w *World) dropBundleGraph(bundleURI string) int {
	n := w.store.EraseGraph(rdf.IRI{Value: bundleURI})
	for file := range w.loadedFiles {
		if strings.HasPrefix(file, bundleURI) {
			delete(w.loadedFiles, file)
			n += w.store.EraseGraph(rdf.IRI{Value: file})
		}
	}
	return n
}
