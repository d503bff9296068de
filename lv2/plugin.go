package lv2

import (
	"bytes"
	"math"
	"regexp"
	"strings"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

var symbolPattern = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// Plugin is an LV2 plugin discovered in a bundle. Its data files are read
// the first time an accessor needs more than the manifest.
type Plugin struct {
	world     *World
	uri       *Node
	bundleURI *Node
	dataURIs  []*Node
	dyn       *dynManifest

	class       *PluginClass
	ports       []*Port
	portsLoaded bool
	loaded      bool
	parseErrors bool
	replaced    bool
}

func newPlugin(w *World, uri, bundleURI *Node) *Plugin {
	return &Plugin{world: w, uri: uri, bundleURI: bundleURI}
}

func comparePlugins(a, b *Plugin) int { return strings.Compare(a.uri.str, b.uri.str) }

// reset forgets everything derived from data files so they are read
// again on next access.
func (p *Plugin) reset() {
	if p.dyn != nil {
		p.dyn.release()
		p.dyn = nil
	}
	p.class = nil
	p.ports = nil
	p.portsLoaded = false
	p.loaded = false
	p.parseErrors = false
	p.replaced = false
}

// load reads the plugin's prototypes, data files and dynamic manifest
// data into the store. It runs once; failures are logged and recorded.
func (p *Plugin) load() {
	if p.loaded {
		return
	}
	p.loaded = true
	w := p.world
	log := w.log.WithField("plugin", p.uri.str)
	graph := p.bundleURI.term()

	p.inheritPrototypes(graph)

	for _, uri := range p.dataURIs {
		if _, err := w.loadFile(uri.str, graph); err != nil {
			log.WithField("file", uri.str).WithField("err", err).Errorf("Error reading plugin data")
			p.parseErrors = true
			return
		}
	}

	if p.dyn != nil {
		var buf bytes.Buffer
		if err := p.dyn.manifest.Data(&buf, p.uri.str); err != nil {
			log.WithField("err", err).Errorf("Dynamic manifest data failed")
			p.parseErrors = true
			return
		}
		if err := w.loadReader(&buf, p.bundleURI.str, "dyn-manifest:"+p.uri.str, graph); err != nil {
			log.WithField("err", err).Errorf("Error reading dynamic manifest data")
			p.parseErrors = true
		}
	}
}

// inheritPrototypes copies the statements of each lv2:prototype onto the
// plugin, flagged as inherited so the plugin's own statements win.
func (p *Plugin) inheritPrototypes(graph rdf.Term) {
	w := p.world
	var prototypes []*Node
	for q := range w.objects(p.uri.term(), w.uris.lv2Prototype) {
		prototypes = append(prototypes, nodeFromTerm(q.O))
	}
	subject := p.uri.term()
	for _, proto := range prototypes {
		if !proto.IsResource() {
			continue
		}
		if _, err := w.LoadResource(proto); err != nil {
			w.log.WithField("plugin", p.uri.str).WithField("err", err).Warnf("Error loading prototype <%s>", proto.str)
		}
		var triples []rdf.Triple
		for q := range w.store.Match(store.Pattern{S: proto.term()}) {
			triples = append(triples, q.Triple())
		}
		loader := store.NewLoader(w.store, graph)
		loader.Inherited = true
		loader.Filter = func(t rdf.Triple) (rdf.Triple, bool) {
			if t.P == w.uris.rdfType && rdf.TermEqual(t.O, w.uris.lv2PluginBase) {
				return t, false
			}
			t.S = subject
			return t, true
		}
		for _, t := range triples {
			_ = loader.Statement(t)
		}
	}
}

// URI returns the plugin URI. It never triggers a load.
func (p *Plugin) URI() *Node { return p.uri }

// BundleURI returns the URI of the bundle that declared the plugin.
func (p *Plugin) BundleURI() *Node { return p.bundleURI }

// DataURIs returns the manifest and the data files of the plugin, in the
// order they are read.
func (p *Plugin) DataURIs() []*Node {
	out := make([]*Node, len(p.dataURIs))
	copy(out, p.dataURIs)
	return out
}

// LibraryURI returns the lv2:binary of the plugin.
func (p *Plugin) LibraryURI() *Node {
	p.load()
	for q := range p.world.objects(p.uri.term(), p.world.uris.lv2Binary) {
		if n := nodeFromTerm(q.O); n.IsURI() {
			return n
		}
	}
	return nil
}

// IsReplaced reports whether another loaded plugin declares dc:replaces
// for this one.
func (p *Plugin) IsReplaced() bool { return p.replaced }

// HasParseErrors reports whether a data file failed to parse.
func (p *Plugin) HasParseErrors() bool {
	p.load()
	return p.parseErrors
}

// Verify is a sanity check a host should pass before instantiating: the
// URI is valid, every data file parsed, and the plugin has a type, a
// doap:name and at least one port.
func (p *Plugin) Verify() bool {
	if err := rdf.ValidateIRI(p.uri.str); err != nil {
		return false
	}
	p.load()
	if p.parseErrors {
		return false
	}
	w := p.world
	s := p.uri.term()
	return w.store.Contains(store.Pattern{S: s, P: w.uris.rdfType}) &&
		w.store.Contains(store.Pattern{S: s, P: w.uris.doapName}) &&
		w.store.Contains(store.Pattern{S: s, P: w.uris.lv2Port})
}

// Name returns the doap:name in the World's language, or nil.
func (p *Plugin) Name() *Node {
	p.load()
	name := p.world.getNode(p.uri, p.world.uris.doapName)
	if !name.IsString() {
		p.world.log.WithField("plugin", p.uri.str).Warnf("Plugin has no (mandatory) doap:name")
		return nil
	}
	return name
}

// Value returns the values of predicate for the plugin, filtered by
// language, or nil.
func (p *Plugin) Value(predicate *Node) *Nodes {
	if !predicate.IsURI() {
		return nil
	}
	p.load()
	return p.world.findNodes(p.uri, rdf.IRI{Value: predicate.str})
}

// Get returns one value of predicate for the plugin, or nil.
func (p *Plugin) Get(predicate *Node) *Node {
	if !predicate.IsURI() {
		return nil
	}
	p.load()
	return p.world.getNode(p.uri, rdf.IRI{Value: predicate.str})
}

// Class returns the most specific known class of the plugin, or the root
// class when none of its types is a known class.
func (p *Plugin) Class() *PluginClass {
	if p.class != nil {
		return p.class
	}
	p.load()
	w := p.world
	for q := range w.objects(p.uri.term(), w.uris.rdfType) {
		iri, ok := q.O.(rdf.IRI)
		if !ok || iri.Value == URIPlugin {
			continue
		}
		if c, ok := w.classes.Search(func(c *PluginClass) int {
			return strings.Compare(c.uri.str, iri.Value)
		}); ok {
			p.class = c
			return c
		}
	}
	p.class = w.rootClass
	return p.class
}

// RequiredFeatures returns the lv2:requiredFeature URIs.
func (p *Plugin) RequiredFeatures() *Nodes {
	p.load()
	return p.world.findNodes(p.uri, p.world.uris.lv2RequiredFeature)
}

// OptionalFeatures returns the lv2:optionalFeature URIs.
func (p *Plugin) OptionalFeatures() *Nodes {
	p.load()
	return p.world.findNodes(p.uri, p.world.uris.lv2OptionalFeature)
}

// SupportedFeatures returns required and optional features together.
func (p *Plugin) SupportedFeatures() *Nodes {
	return Merge(p.OptionalFeatures(), p.RequiredFeatures())
}

// HasFeature reports whether the plugin requires or supports feature.
func (p *Plugin) HasFeature(feature *Node) bool {
	p.load()
	w := p.world
	s := p.uri.term()
	return w.store.Contains(store.Pattern{S: s, P: w.uris.lv2OptionalFeature, O: feature.term()}) ||
		w.store.Contains(store.Pattern{S: s, P: w.uris.lv2RequiredFeature, O: feature.term()})
}

// ExtensionData returns the lv2:extensionData URIs.
func (p *Plugin) ExtensionData() *Nodes {
	p.load()
	return p.world.findNodes(p.uri, p.world.uris.lv2ExtensionData)
}

// HasExtensionData reports whether the plugin provides extension data uri.
func (p *Plugin) HasExtensionData(uri *Node) bool {
	p.load()
	return p.world.store.Contains(store.Pattern{S: p.uri.term(), P: p.world.uris.lv2ExtensionData, O: uri.term()})
}

// loadPorts builds the port array. A port with an invalid symbol, a
// non-integer index, or a gap in the indices leaves the plugin with no
// ports at all.
func (p *Plugin) loadPorts() {
	if p.portsLoaded {
		return
	}
	p.load()
	p.portsLoaded = true
	w := p.world
	log := w.log.WithField("plugin", p.uri.str)

	// Indices must run 0..n-1, so no valid index reaches the port count.
	n := int64(w.store.Count(store.Pattern{S: p.uri.term(), P: w.uris.lv2Port}))
	ports := make([]*Port, n)
	for q := range w.objects(p.uri.term(), w.uris.lv2Port) {
		node := nodeFromTerm(q.O)
		if !node.IsResource() {
			log.Errorf("Port %s is not a resource", node.String())
			return
		}
		symbol := w.firstObject(node.term(), w.uris.lv2Symbol)
		index := w.firstObject(node.term(), w.uris.lv2Index)
		if !symbol.IsString() || !symbolPattern.MatchString(symbol.str) {
			log.Errorf("Port symbol %q is invalid", symbol.String())
			return
		}
		if !index.IsInt() || index.i < 0 {
			log.Errorf("Port %s index is not a non-negative integer", symbol.str)
			return
		}
		if index.i >= n {
			log.Errorf("Port %s index %d is out of range (%d ports)", symbol.str, index.i, n)
			return
		}
		i := int(index.i)
		port := ports[i]
		if port == nil {
			port = &Port{plugin: p, node: node, index: uint32(i), symbol: symbol, classes: NewNodes()}
			ports[i] = port
		}
		for t := range w.objects(node.term(), w.uris.rdfType) {
			if class := nodeFromTerm(t.O); class.IsURI() {
				port.classes.Insert(class)
			} else {
				log.Warnf("Port %s type is not a URI", symbol.str)
			}
		}
	}
	for i, port := range ports {
		if port == nil {
			log.Errorf("Plugin is missing port %d/%d", i, len(ports))
			return
		}
	}
	p.ports = ports
}

// NumPorts returns the number of ports, or zero when any port is malformed.
func (p *Plugin) NumPorts() uint32 {
	p.loadPorts()
	return uint32(len(p.ports))
}

// PortByIndex returns the port at index, or nil.
func (p *Plugin) PortByIndex(index uint32) *Port {
	p.loadPorts()
	if int(index) >= len(p.ports) {
		return nil
	}
	return p.ports[index]
}

// PortBySymbol returns the port with the given lv2:symbol, or nil.
func (p *Plugin) PortBySymbol(symbol *Node) *Port {
	p.loadPorts()
	for _, port := range p.ports {
		if port.symbol.Equals(symbol) {
			return port
		}
	}
	return nil
}

// PortByDesignation returns the first port with lv2:designation
// designation that is also of class, when class is non-nil.
func (p *Plugin) PortByDesignation(class, designation *Node) *Port {
	p.loadPorts()
	w := p.world
	for _, port := range p.ports {
		if w.store.Contains(store.Pattern{S: port.node.term(), P: w.uris.lv2Designation, O: designation.term()}) &&
			(class == nil || port.IsA(class)) {
			return port
		}
	}
	return nil
}

func (p *Plugin) portByProperty(property rdf.IRI) *Port {
	p.loadPorts()
	w := p.world
	for _, port := range p.ports {
		if w.store.Contains(store.Pattern{S: port.node.term(), P: w.uris.lv2PortProperty, O: property}) {
			return port
		}
	}
	return nil
}

// NumPortsOfClass counts the ports that belong to every given class.
func (p *Plugin) NumPortsOfClass(classes ...*Node) uint32 {
	p.loadPorts()
	var n uint32
	for _, port := range p.ports {
		match := true
		for _, c := range classes {
			if !port.IsA(c) {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

// PortRanges returns the minimum, maximum and default of every port as
// float32, with NaN where a value is missing or not a number.
func (p *Plugin) PortRanges() (mins, maxs, defs []float32) {
	p.loadPorts()
	n := len(p.ports)
	mins, maxs, defs = make([]float32, n), make([]float32, n), make([]float32, n)
	for i, port := range p.ports {
		def, lo, hi := port.Range()
		defs[i], mins[i], maxs[i] = asFloat32(def), asFloat32(lo), asFloat32(hi)
	}
	return mins, maxs, defs
}

func asFloat32(n *Node) float32 {
	if v, err := n.AsFloat(); err == nil {
		return float32(v)
	}
	return float32(math.NaN())
}

// LatencyPortIndex returns the index of the port that reports latency:
// first a port with lv2:reportsLatency, else an output port designated
// lv2:latency.
func (p *Plugin) LatencyPortIndex() (uint32, bool) {
	if port := p.portByProperty(p.world.uris.lv2ReportsLatency); port != nil {
		return port.index, true
	}
	if port := p.PortByDesignation(NewURI(URIOutputPort), NewURI(URILatency)); port != nil {
		return port.index, true
	}
	return 0, false
}

// HasLatency reports whether a port reports the plugin's latency.
func (p *Plugin) HasLatency() bool {
	_, ok := p.LatencyPortIndex()
	return ok
}

// Related returns the resources that lv2:appliesTo this plugin, such as
// presets, optionally limited to those of type.
func (p *Plugin) Related(typ *Node) *Nodes {
	p.load()
	w := p.world
	related := w.nodesFromMatches(w.match(nil, w.uris.lv2AppliesTo, p.uri.term()), store.Subjects)
	if typ == nil {
		return related
	}
	var matches []*Node
	for n := range related.All() {
		if w.store.Contains(store.Pattern{S: n.term(), P: w.uris.rdfType, O: typ.term()}) {
			matches = append(matches, n)
		}
	}
	return nodesOf(matches)
}

// Project returns the lv2:project of the plugin, or nil.
func (p *Plugin) Project() *Node {
	p.load()
	project := p.world.firstObject(p.uri.term(), p.world.uris.lv2Project)
	if !project.IsResource() {
		return nil
	}
	return project
}

// author returns the doap:maintainer of the plugin, or of its project.
func (p *Plugin) author() *Node {
	p.load()
	w := p.world
	if m := w.firstObject(p.uri.term(), w.uris.doapMaintainer); m.IsResource() {
		return m
	}
	if project := p.Project(); project != nil {
		if m := w.firstObject(project.term(), w.uris.doapMaintainer); m.IsResource() {
			return m
		}
	}
	return nil
}

func (p *Plugin) authorProperty(predicate string) *Node {
	author := p.author()
	if author == nil {
		return nil
	}
	return p.world.getNode(author, rdf.IRI{Value: predicate})
}

// AuthorName returns the maintainer's foaf:name.
func (p *Plugin) AuthorName() *Node { return p.authorProperty(URIFoafName) }

// AuthorEmail returns the maintainer's foaf:mbox.
func (p *Plugin) AuthorEmail() *Node { return p.authorProperty(URIFoafMbox) }

// AuthorHomepage returns the maintainer's foaf:homepage.
func (p *Plugin) AuthorHomepage() *Node { return p.authorProperty(URIFoafHomepage) }

// UIs returns the user interfaces declared with ui:ui, or nil. Entries
// without a URI, a type or a binary are logged and skipped.
func (p *Plugin) UIs() *Collection[*UI] {
	p.load()
	w := p.world
	uis := NewCollection(compareUIs)
	for q := range w.objects(p.uri.term(), w.uris.uiUI) {
		node := nodeFromTerm(q.O)
		typ := w.firstObject(q.O, w.uris.rdfType)
		binary := w.firstObject(q.O, w.uris.lv2Binary)
		if binary == nil {
			binary = w.firstObject(q.O, w.uris.uiBinary)
		}
		if !node.IsURI() || !typ.IsURI() || !binary.IsURI() {
			w.log.WithField("plugin", p.uri.str).Errorf("Corrupt UI <%s>", node.String())
			continue
		}
		uis.Insert(newUI(w, node, typ, binary))
	}
	if uis.Len() == 0 {
		return nil
	}
	return uis
}
