package lv2

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/lv2-go/rdf"
)

const prefixes = `@prefix lv2:  <http://lv2plug.in/ns/lv2core#> .
@prefix rdf:  <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix doap: <http://usefulinc.com/ns/doap#> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix dc:   <http://purl.org/dc/terms/> .
@prefix ui:   <http://lv2plug.in/ns/extensions/ui#> .
@prefix pset: <http://lv2plug.in/ns/ext/presets#> .
@prefix dman: <http://lv2plug.in/ns/ext/dynmanifest#> .
`

const (
	ampURI   = "http://example.org/amp"
	childURI = "http://example.org/child"
)

// writeBundle creates dir/name with the given files, each prefixed with
// the common namespace declarations, and returns the bundle URI.
func writeBundle(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	bundle := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	for file, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(bundle, file), []byte(prefixes+body), 0o644))
	}
	return rdf.FileURI(bundle) + "/"
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestWorld(t *testing.T, path string, opts ...Option) *World {
	t.Helper()
	base := []Option{OptLV2Path(path), OptLang("en"), OptLogger(quietLogger())}
	w := New(append(base, opts...)...)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

const ampManifest = `
<http://example.org/amp>
    a lv2:Plugin ;
    lv2:binary <amp.so> ;
    rdfs:seeAlso <amp.ttl> .

<http://example.org/preset>
    a pset:Preset ;
    lv2:appliesTo <http://example.org/amp> ;
    rdfs:seeAlso <preset.ttl> .
`

const ampData = `
<http://example.org/amp>
    a lv2:Plugin , lv2:AmplifierPlugin ;
    doap:name "Amp" , "Ampli"@fr , "Verstärker"@de ;
    doap:maintainer [
        foaf:name "Jane" ;
        foaf:mbox <mailto:jane@example.org>
    ] ;
    lv2:optionalFeature lv2:hardRTCapable ;
    lv2:requiredFeature <http://example.org/feature#map> ;
    ui:ui <http://example.org/amp#ui> ;
    lv2:port [
        a lv2:InputPort , lv2:ControlPort ;
        lv2:index 0 ;
        lv2:symbol "gain" ;
        lv2:name "Gain" , "Gain FR"@fr ;
        lv2:default 0.5 ;
        lv2:minimum 0.0 ;
        lv2:maximum 1.0 ;
        lv2:scalePoint [ rdfs:label "High" ; rdf:value 1.0 ] , [ rdfs:label "Low" ; rdf:value 0.0 ]
    ] , [
        a lv2:OutputPort , lv2:AudioPort ;
        lv2:index 1 ;
        lv2:symbol "out" ;
        lv2:name "Out" ;
        lv2:portProperty lv2:connectionOptional
    ] .

<http://example.org/amp#ui>
    a ui:GtkUI ;
    ui:binary <amp_ui.so> .
`

const presetData = `
<http://example.org/preset> rdfs:label "Loud" .
`

// ampBundle writes the standard amp bundle into dir and returns its URI.
func ampBundle(t *testing.T, dir string) string {
	return writeBundle(t, dir, "amp.lv2", map[string]string{
		"manifest.ttl": ampManifest,
		"amp.ttl":      ampData,
		"preset.ttl":   presetData,
	})
}
