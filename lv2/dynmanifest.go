package lv2

import (
	"bytes"
	"io"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// DynManifest generates manifest data at runtime for a bundle whose
// manifest declares a dman:DynManifest.
type DynManifest interface {
	// Subjects writes Turtle listing the plugins the library provides.
	Subjects(w io.Writer) error
	// Data writes Turtle describing one plugin.
	Data(w io.Writer, pluginURI string) error
	Close() error
}

// DynManifestOpener is implemented by libraries that can generate
// manifest data.
type DynManifestOpener interface {
	OpenDynManifest(features []Feature) (DynManifest, error)
}

type dynManifest struct {
	world    *World
	bundle   string
	key      libKey
	manifest DynManifest
	plugins  []string
	refs     int
	closed   bool
}

func (d *dynManifest) retain() { d.refs++ }

func (d *dynManifest) release() {
	d.refs--
	if d.refs > 0 {
		return
	}
	if err := d.close(); err != nil {
		d.world.log.WithField("bundle", d.bundle).WithField("err", err).Warnf("Error closing dynamic manifest")
	}
	for i, other := range d.world.dynManifests {
		if other == d {
			d.world.dynManifests = append(d.world.dynManifests[:i], d.world.dynManifests[i+1:]...)
			break
		}
	}
}

func (d *dynManifest) close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.manifest.Close()
	d.world.releaseLibrary(d.key)
	return err
}

// loadDynManifests opens the dynamic manifest libraries a bundle declares
// and skims the plugin subjects they generate. The returned manifests
// hold one reference each that the caller releases.
func (w *World) loadDynManifests(bundleURI, manifestURI string) []*dynManifest {
	if !w.opts.DynManifest {
		return nil
	}
	graph := rdf.IRI{Value: bundleURI}
	log := w.log.WithField("bundle", bundleURI)
	bundlePath, err := rdf.FilePath(bundleURI)
	if err != nil {
		bundlePath = bundleURI
	}

	var out []*dynManifest
	for q := range w.store.Match(store.Pattern{P: w.uris.rdfType, O: w.uris.dynManifest, G: graph}) {
		bq, ok := w.store.First(store.Pattern{S: q.S, P: w.uris.lv2Binary, G: graph})
		binary, isIRI := bq.O.(rdf.IRI)
		if !ok || !isIRI {
			log.Errorf("Dynamic manifest in %s has no binaries, ignored", manifestURI)
			continue
		}
		lib, key, err := w.openLibrary(binary.Value, bundlePath, nil)
		if err != nil {
			continue
		}
		opener, ok := lib.(DynManifestOpener)
		if !ok {
			log.Errorf("Library <%s> does not provide a dynamic manifest", binary.Value)
			w.releaseLibrary(key)
			continue
		}
		manifest, err := opener.OpenDynManifest(nil)
		if err != nil {
			log.WithField("err", err).Errorf("Failed to open dynamic manifest <%s>", binary.Value)
			w.releaseLibrary(key)
			continue
		}
		var buf bytes.Buffer
		skim := store.NewSkimmer(nil, w.uris.lv2Plugin, store.Subjects, URIRDFType)
		err = manifest.Subjects(&buf)
		if err == nil {
			err = rdf.ReadTurtle(&buf, bundleURI, skim, w.decodeOptions("dyn-manifest:"+binary.Value))
		}
		if err != nil {
			log.WithField("err", err).Errorf("Error reading dynamic manifest subjects")
		}
		d := &dynManifest{world: w, bundle: bundleURI, key: key, manifest: manifest, refs: 1}
		for _, s := range skim.Nodes(URIRDFType) {
			if iri, ok := s.(rdf.IRI); ok {
				d.plugins = append(d.plugins, iri.Value)
			}
		}
		w.dynManifests = append(w.dynManifests, d)
		out = append(out, d)
	}
	return out
}
