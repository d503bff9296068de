package lv2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/lv2-go/rdf"
)

func TestLoadAllDiscoversPlugin(t *testing.T) {
	dir := t.TempDir()
	bundle := ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()

	require.Equal(t, 1, w.Plugins().Len())
	p := w.PluginByURI(ampURI)
	require.NotNil(t, p)
	assert.Equal(t, bundle, p.BundleURI().String())
	assert.False(t, p.loaded, "data files are read lazily")

	data := p.DataURIs()
	require.Len(t, data, 2)
	assert.Equal(t, bundle+"manifest.ttl", data[0].String())
	assert.Equal(t, bundle+"amp.ttl", data[1].String())

	assert.Equal(t, uint32(2), p.NumPorts())
	assert.True(t, p.loaded)
	assert.True(t, p.Verify())
	assert.Equal(t, bundle+"amp.so", p.LibraryURI().String())
}

func TestLoadBundleIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	bundle := ampBundle(t, dir)
	w := newTestWorld(t, dir)

	require.NoError(t, w.LoadBundle(NewURI(bundle)))
	n := w.store.Len()
	require.NotZero(t, n)
	require.NoError(t, w.LoadBundle(NewURI(bundle)))
	assert.Equal(t, n, w.store.Len())
	assert.Equal(t, 1, w.Plugins().Len())
}

func TestLoadBundleRejectsLiteral(t *testing.T) {
	w := newTestWorld(t, t.TempDir())
	assert.ErrorIs(t, w.LoadBundle(NewString("not a uri")), ErrWrongKind)
}

func TestLoadBundleParseErrorDropsGraph(t *testing.T) {
	dir := t.TempDir()
	bundle := writeBundle(t, dir, "bad.lv2", map[string]string{
		"manifest.ttl": `<http://example.org/bad> a lv2:Plugin .
<http://example.org/bad> lv2:binary <bad.so`,
	})
	w := newTestWorld(t, dir)

	var perr *rdf.ParseError
	require.ErrorAs(t, w.LoadBundle(NewURI(bundle)), &perr)
	assert.Zero(t, w.store.GraphLen(rdf.IRI{Value: bundle}))
	assert.Zero(t, w.Plugins().Len())

	w.LoadAll()
	assert.Zero(t, w.Plugins().Len())
}

func TestUnloadBundleKeepsZombie(t *testing.T) {
	dir := t.TempDir()
	bundle := ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()

	p := w.PluginByURI(ampURI)
	require.NotNil(t, p)
	require.Equal(t, "Amp", p.Name().String())

	require.NoError(t, w.UnloadBundle(NewURI(bundle)))
	assert.Zero(t, w.Plugins().Len())
	assert.Nil(t, w.PluginByURI(ampURI))
	assert.Zero(t, w.store.GraphLen(rdf.IRI{Value: bundle}))
	assert.Equal(t, ampURI, p.URI().String(), "zombie stays readable")

	require.NoError(t, w.LoadBundle(NewURI(bundle)))
	assert.Same(t, p, w.PluginByURI(ampURI), "reload revives the zombie")
	assert.Equal(t, "Amp", p.Name().String())
}

func versionedManifest(minor, micro int) string {
	return `
<http://example.org/amp>
    a lv2:Plugin ;
    lv2:minorVersion ` + itoa(minor) + ` ;
    lv2:microVersion ` + itoa(micro) + ` ;
    lv2:binary <amp.so> ;
    rdfs:seeAlso <amp.ttl> .
`
}

func itoa(i int) string { return NewInt(int64(i)).String() }

func namedAmp(name string) string {
	return `<http://example.org/amp> doap:name "` + name + `" .`
}

func TestNewerVersionReplacesOlder(t *testing.T) {
	dir := t.TempDir()
	old := writeBundle(t, dir, "a.lv2", map[string]string{
		"manifest.ttl": versionedManifest(1, 0),
		"amp.ttl":      namedAmp("Old"),
	})
	newer := writeBundle(t, dir, "b.lv2", map[string]string{
		"manifest.ttl": versionedManifest(2, 0),
		"amp.ttl":      namedAmp("New"),
	})
	w := newTestWorld(t, dir)
	w.LoadAll()

	p := w.PluginByURI(ampURI)
	require.NotNil(t, p)
	assert.Equal(t, newer, p.BundleURI().String())
	assert.Zero(t, w.store.GraphLen(rdf.IRI{Value: old}))
	assert.Equal(t, "New", p.Name().String())

	require.NoError(t, w.LoadBundle(NewURI(old)))
	p = w.PluginByURI(ampURI)
	require.NotNil(t, p)
	assert.Equal(t, newer, p.BundleURI().String(), "reloading the older bundle must not replace the newer one")
	assert.Zero(t, w.store.GraphLen(rdf.IRI{Value: old}))
	assert.Equal(t, "New", p.Name().String())
}

func TestOlderVersionIsIgnored(t *testing.T) {
	dir := t.TempDir()
	newer := writeBundle(t, dir, "a.lv2", map[string]string{
		"manifest.ttl": versionedManifest(0, 4),
		"amp.ttl":      namedAmp("New"),
	})
	older := writeBundle(t, dir, "b.lv2", map[string]string{
		"manifest.ttl": versionedManifest(0, 2),
		"amp.ttl":      namedAmp("Old"),
	})
	w := newTestWorld(t, dir)
	w.LoadAll()

	p := w.PluginByURI(ampURI)
	require.NotNil(t, p)
	assert.Equal(t, newer, p.BundleURI().String())
	assert.Zero(t, w.store.GraphLen(rdf.IRI{Value: older}))
	assert.Equal(t, "New", p.Name().String())
}

func TestDuplicateUnversionedFirstWins(t *testing.T) {
	dir := t.TempDir()
	first := writeBundle(t, dir, "a.lv2", map[string]string{
		"manifest.ttl": ampManifest,
		"amp.ttl":      namedAmp("First"),
	})
	writeBundle(t, dir, "b.lv2", map[string]string{
		"manifest.ttl": ampManifest,
		"amp.ttl":      namedAmp("Second"),
	})
	w := newTestWorld(t, dir)
	w.LoadAll()

	require.Equal(t, 1, w.Plugins().Len())
	assert.Equal(t, first, w.PluginByURI(ampURI).BundleURI().String())
}

func TestBundleVersionFollowsSeeAlso(t *testing.T) {
	dir := t.TempDir()
	bundle := writeBundle(t, dir, "amp.lv2", map[string]string{
		"manifest.ttl": ampManifest,
		"amp.ttl":      `<http://example.org/amp> lv2:minorVersion 3 ; lv2:microVersion 7 .`,
	})
	w := newTestWorld(t, dir)
	assert.Equal(t, Version{Minor: 3, Micro: 7}, w.bundleVersion(bundle, rdf.IRI{Value: ampURI}))
}

func TestVersionCompare(t *testing.T) {
	assert.Positive(t, Version{Minor: 2}.Compare(Version{Minor: 1, Micro: 9}))
	assert.Negative(t, Version{Minor: 1, Micro: 2}.Compare(Version{Minor: 1, Micro: 3}))
	assert.Zero(t, Version{}.Compare(Version{}))
	assert.Equal(t, "1.2", Version{Minor: 1, Micro: 2}.String())
}

func TestSetOption(t *testing.T) {
	w := newTestWorld(t, t.TempDir())

	assert.ErrorIs(t, w.SetOption(NSLilv+"nonsense", NewBool(true)), ErrUnknownOption)
	assert.ErrorIs(t, w.SetOption(OptionLang, NewBool(true)), ErrWrongKind)
	assert.Equal(t, "en", w.Lang())

	require.NoError(t, w.SetOption(OptionLang, NewString("de_DE.UTF-8")))
	assert.Equal(t, "de-de", w.Lang())

	require.NoError(t, w.SetOption(OptionFilterLang, NewBool(false)))
	assert.False(t, w.opts.FilterLang)
	require.NoError(t, w.SetOption(OptionDynManifest, NewBool(false)))
	assert.False(t, w.opts.DynManifest)
	require.NoError(t, w.SetOption(OptionLV2Path, NewString("/nowhere")))
	assert.Equal(t, "/nowhere", w.opts.LV2Path)
}

func TestSymbol(t *testing.T) {
	w := newTestWorld(t, t.TempDir())
	assert.Equal(t, "my_gain", w.Symbol(NewURI("http://example.org/plugins#my-gain")).String())
	assert.Equal(t, "_fast", w.Symbol(NewURI("http://example.org/2fast")).String())
	assert.Equal(t, "q1", w.Symbol(NewURI("http://example.org/x?q1")).String())
	assert.Nil(t, w.Symbol(NewBlank("b0")))
}

func TestSymbolPrefersExplicit(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()

	port := w.PluginByURI(ampURI).PortByIndex(0)
	require.NotNil(t, port)
	assert.Equal(t, "gain", w.Symbol(port.Node()).String())
}

func TestLoadAndUnloadResource(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()

	preset := NewURI("http://example.org/preset")
	label := NewURI(URIRDFSLabel)
	assert.Nil(t, w.Get(preset, label, nil))

	n, err := w.LoadResource(preset)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Loud", w.Get(preset, label, nil).String())

	n, err = w.LoadResource(preset)
	require.NoError(t, err)
	assert.Zero(t, n, "files load once")

	n, err = w.UnloadResource(preset)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, w.Get(preset, label, nil))

	_, err = w.LoadResource(NewString("literal"))
	assert.ErrorIs(t, err, ErrNotResource)
}

func TestFindNodesValidation(t *testing.T) {
	w := newTestWorld(t, t.TempDir())
	s := NewURI(ampURI)
	p := NewURI(URIDoapName)

	_, err := w.FindNodes(s, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = w.FindNodes(nil, p, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = w.FindNodes(s, NewString("name"), nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = w.FindNodes(NewInt(1), p, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	nodes, err := w.FindNodes(s, p, nil)
	require.NoError(t, err)
	assert.Zero(t, nodes.Len())
}

func TestFindNodesBySubjectAndObject(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()

	subjects, err := w.FindNodes(nil, NewURI(URIRDFType), NewURI(URIPlugin))
	require.NoError(t, err)
	require.Equal(t, 1, subjects.Len())
	assert.Equal(t, ampURI, subjects.Get(0).String())

	assert.True(t, w.Ask(NewURI(ampURI), NewURI(URIRDFType), NewURI(URIPlugin)))
	assert.False(t, w.Ask(NewURI(ampURI), NewURI(URIRDFType), NewURI(URIPreset)))
}

func TestPluginClasses(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	writeBundle(t, dir, "core.lv2", map[string]string{
		"manifest.ttl": `<http://lv2plug.in/ns/lv2core> a lv2:Specification ; rdfs:seeAlso <lv2core.ttl> .`,
		"lv2core.ttl": `
lv2:AmplifierPlugin a rdfs:Class ; rdfs:subClassOf lv2:DynamicsPlugin ; rdfs:label "Amplifier" .
lv2:DynamicsPlugin a rdfs:Class ; rdfs:subClassOf lv2:Plugin ; rdfs:label "Dynamics" .
lv2:Orphan a rdfs:Class ; rdfs:label "No parent" .
`,
	})
	w := newTestWorld(t, dir)
	w.LoadAll()

	assert.Equal(t, 2, w.PluginClasses().Len())
	root := w.PluginClass()
	assert.Equal(t, URIPlugin, root.URI().String())
	assert.Nil(t, root.ParentURI())

	children := root.Children()
	require.Equal(t, 1, children.Len())
	assert.Equal(t, "Dynamics", children.Get(0).Label().String())

	class := w.PluginByURI(ampURI).Class()
	assert.Equal(t, NSLV2+"AmplifierPlugin", class.URI().String())
	assert.Equal(t, NSLV2+"DynamicsPlugin", class.ParentURI().String())
}

func TestPluginClassDefaultsToRoot(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()
	assert.Same(t, w.PluginClass(), w.PluginByURI(ampURI).Class())
}

func TestReplacedPlugin(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	writeBundle(t, dir, "amp2.lv2", map[string]string{
		"manifest.ttl": `<http://example.org/amp2> a lv2:Plugin ; dc:replaces <http://example.org/amp> .`,
	})
	w := newTestWorld(t, dir)
	w.LoadAll()

	assert.True(t, w.PluginByURI(ampURI).IsReplaced())
	assert.False(t, w.PluginByURI("http://example.org/amp2").IsReplaced())
}

func TestSkipsHiddenAndPlainFiles(t *testing.T) {
	dir := t.TempDir()
	ampBundle(t, dir)
	writeBundle(t, dir, ".hidden.lv2", map[string]string{
		"manifest.ttl": `<http://example.org/hidden> a lv2:Plugin .`,
	})
	w := newTestWorld(t, dir)
	w.LoadAll()
	assert.Equal(t, 1, w.Plugins().Len())
	assert.Nil(t, w.PluginByURI("http://example.org/hidden"))
}

func TestCloseEmptiesWorld(t *testing.T) {
	dir := t.TempDir()
	bundleURI := ampBundle(t, dir)
	w := newTestWorld(t, dir)
	w.LoadAll()
	require.NoError(t, w.Close())
	assert.Zero(t, w.Plugins().Len())
	assert.Zero(t, w.store.Len())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.LoadBundle(NewURI(bundleURI)), ErrClosed)
	_, err := w.LoadResource(NewURI("http://example.org/preset"))
	assert.ErrorIs(t, err, ErrClosed)
	w.LoadAll()
	assert.Zero(t, w.Plugins().Len())
	assert.Zero(t, w.store.Len())
}
