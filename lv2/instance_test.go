package lv2

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	connected map[uint32]any
	active    bool
	runs      int
	frames    uint32
	cleaned   bool
}

func (h *fakeHandle) ConnectPort(index uint32, data any) { h.connected[index] = data }
func (h *fakeHandle) Activate()                          { h.active = true }
func (h *fakeHandle) Run(n uint32)                       { h.runs++; h.frames += n }
func (h *fakeHandle) Deactivate()                        { h.active = false }
func (h *fakeHandle) Cleanup()                           { h.cleaned = true }

type fakeDescriptor struct {
	uri     string
	err     error
	handles []*fakeHandle
	rate    float64
	bundle  string
}

func (d *fakeDescriptor) URI() string { return d.uri }

func (d *fakeDescriptor) Instantiate(rate float64, bundlePath string, _ []Feature) (Handle, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.rate, d.bundle = rate, bundlePath
	h := &fakeHandle{connected: map[uint32]any{}}
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *fakeDescriptor) ExtensionData(uri string) any {
	if uri == "http://example.org/ext" {
		return "ext"
	}
	return nil
}

type fakeDynManifest struct {
	subjects string
	data     map[string]string
	closed   bool
}

func (m *fakeDynManifest) Subjects(w io.Writer) error {
	_, err := io.WriteString(w, m.subjects)
	return err
}

func (m *fakeDynManifest) Data(w io.Writer, uri string) error {
	_, err := io.WriteString(w, m.data[uri])
	return err
}

func (m *fakeDynManifest) Close() error {
	m.closed = true
	return nil
}

type fakeLibrary struct {
	descriptors []Descriptor
	dyn         *fakeDynManifest
	closed      int
}

func (l *fakeLibrary) Descriptor(i uint32) Descriptor {
	if int(i) >= len(l.descriptors) {
		return nil
	}
	return l.descriptors[i]
}

func (l *fakeLibrary) Close() error {
	l.closed++
	return nil
}

func (l *fakeLibrary) OpenDynManifest([]Feature) (DynManifest, error) {
	if l.dyn == nil {
		return nil, errors.New("no dynamic manifest")
	}
	return l.dyn, nil
}

type fakeOpener struct {
	libs  map[string]*fakeLibrary
	opens int
}

func (o *fakeOpener) open(path, _ string, _ []Feature) (Library, error) {
	lib, ok := o.libs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("no library %s", path)
	}
	o.opens++
	return lib, nil
}

func ampWithLibrary(t *testing.T, lib *fakeLibrary) (*Plugin, *fakeOpener) {
	t.Helper()
	opener := &fakeOpener{libs: map[string]*fakeLibrary{"amp.so": lib}}
	_, p := loadAmp(t, OptLibraryOpener(opener.open))
	return p, opener
}

func TestInstanceLifecycle(t *testing.T) {
	desc := &fakeDescriptor{uri: ampURI}
	lib := &fakeLibrary{descriptors: []Descriptor{&fakeDescriptor{uri: "http://example.org/other"}, desc}}
	p, opener := ampWithLibrary(t, lib)

	inst, err := p.Instantiate(48000, nil)
	require.NoError(t, err)
	assert.Equal(t, ampURI, inst.URI())
	assert.Equal(t, 48000.0, desc.rate)
	bundlePath, _ := p.BundleURI().FilePath()
	assert.Equal(t, bundlePath, desc.bundle)

	h := desc.handles[0]
	require.Len(t, h.connected, 2, "every port starts disconnected")
	assert.Nil(t, h.connected[0])

	assert.ErrorIs(t, inst.Run(64), ErrNotActivated)
	inst.Activate()
	assert.True(t, h.active)
	assert.ErrorIs(t, inst.Run(64), ErrPortsNotConnected)

	gain := float32(0.5)
	require.NoError(t, inst.ConnectPort(0, &gain))
	require.NoError(t, inst.Run(64), "optional ports may stay unconnected")
	require.NoError(t, inst.Run(32))
	assert.Equal(t, 2, h.runs)
	assert.Equal(t, uint32(96), h.frames)

	assert.Error(t, inst.ConnectPort(5, &gain))
	assert.Equal(t, "ext", inst.ExtensionData("http://example.org/ext"))
	assert.Nil(t, inst.ExtensionData("http://example.org/none"))

	inst.Deactivate()
	assert.ErrorIs(t, inst.Run(64), ErrNotActivated)

	inst.Free()
	assert.True(t, h.cleaned)
	assert.Equal(t, 1, lib.closed)
	assert.Equal(t, 1, opener.opens)
	assert.ErrorIs(t, inst.Run(64), ErrClosed)
	inst.Free()
	assert.Equal(t, 1, lib.closed)
}

func TestLibraryIsShared(t *testing.T) {
	lib := &fakeLibrary{descriptors: []Descriptor{&fakeDescriptor{uri: ampURI}}}
	p, opener := ampWithLibrary(t, lib)

	a, err := p.Instantiate(44100, nil)
	require.NoError(t, err)
	b, err := p.Instantiate(44100, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, opener.opens)

	a.Free()
	assert.Zero(t, lib.closed)
	b.Free()
	assert.Equal(t, 1, lib.closed)

	c, err := p.Instantiate(44100, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, opener.opens)
	c.Free()
}

func TestInstantiateFailures(t *testing.T) {
	t.Run("no descriptor", func(t *testing.T) {
		lib := &fakeLibrary{descriptors: []Descriptor{&fakeDescriptor{uri: "http://example.org/other"}}}
		p, _ := ampWithLibrary(t, lib)
		_, err := p.Instantiate(48000, nil)
		assert.ErrorIs(t, err, ErrNoDescriptor)
		assert.Equal(t, 1, lib.closed)
	})
	t.Run("descriptor error", func(t *testing.T) {
		lib := &fakeLibrary{descriptors: []Descriptor{&fakeDescriptor{uri: ampURI, err: errors.New("boom")}}}
		p, _ := ampWithLibrary(t, lib)
		_, err := p.Instantiate(48000, nil)
		assert.ErrorIs(t, err, ErrInstantiate)
		assert.Equal(t, 1, lib.closed)
	})
	t.Run("missing library", func(t *testing.T) {
		opener := &fakeOpener{libs: map[string]*fakeLibrary{}}
		_, p := loadAmp(t, OptLibraryOpener(opener.open))
		_, err := p.Instantiate(48000, nil)
		assert.ErrorIs(t, err, ErrNoLibrary)
	})
	t.Run("no binary", func(t *testing.T) {
		dir := t.TempDir()
		writeBundle(t, dir, "nobin.lv2", map[string]string{
			"manifest.ttl": `<http://example.org/nobin> a lv2:Plugin .`,
		})
		w := newTestWorld(t, dir)
		w.LoadAll()
		_, err := w.PluginByURI("http://example.org/nobin").Instantiate(48000, nil)
		assert.ErrorIs(t, err, ErrNoLibrary)
	})
}

const dynSubjects = `<http://example.org/dyn> a <http://lv2plug.in/ns/lv2core#Plugin> .`

const dynData = `@prefix lv2:  <http://lv2plug.in/ns/lv2core#> .
@prefix doap: <http://usefulinc.com/ns/doap#> .
<http://example.org/dyn> doap:name "Dynamic" ;
    lv2:port [ a lv2:InputPort , lv2:AudioPort ; lv2:index 0 ; lv2:symbol "in" ] .`

func dynBundle(t *testing.T) (string, *fakeOpener, *fakeDynManifest) {
	t.Helper()
	dir := t.TempDir()
	writeBundle(t, dir, "dyn.lv2", map[string]string{
		"manifest.ttl": `<http://example.org/dyn-lib> a dman:DynManifest ; lv2:binary <dyn.so> .`,
	})
	dyn := &fakeDynManifest{subjects: dynSubjects, data: map[string]string{"http://example.org/dyn": dynData}}
	opener := &fakeOpener{libs: map[string]*fakeLibrary{"dyn.so": {dyn: dyn}}}
	return dir, opener, dyn
}

func TestDynamicManifest(t *testing.T) {
	dir, opener, dyn := dynBundle(t)
	w := newTestWorld(t, dir, OptLibraryOpener(opener.open))
	w.LoadAll()

	p := w.PluginByURI("http://example.org/dyn")
	require.NotNil(t, p)
	assert.False(t, dyn.closed, "plugins keep the manifest open")
	assert.Equal(t, "Dynamic", p.Name().String())
	assert.Equal(t, uint32(1), p.NumPorts())

	require.NoError(t, w.Close())
	assert.True(t, dyn.closed)
	assert.Equal(t, 1, opener.libs["dyn.so"].closed)
}

func TestDynamicManifestDisabled(t *testing.T) {
	dir, opener, _ := dynBundle(t)
	w := newTestWorld(t, dir, OptLibraryOpener(opener.open), OptDynManifest(false))
	w.LoadAll()
	assert.Nil(t, w.PluginByURI("http://example.org/dyn"))
	assert.Zero(t, opener.opens)
}
