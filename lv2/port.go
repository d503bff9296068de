package lv2

import (
	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// Port is one port of a plugin. Ports are owned by their plugin.
type Port struct {
	plugin  *Plugin
	node    *Node
	index   uint32
	symbol  *Node
	classes *Nodes
}

// Node returns the subject that describes the port, usually a blank node.
func (p *Port) Node() *Node { return p.node }

// Index returns the port index.
func (p *Port) Index() uint32 { return p.index }

// Symbol returns the lv2:symbol of the port.
func (p *Port) Symbol() *Node { return p.symbol }

// Classes returns the rdf:type URIs of the port.
func (p *Port) Classes() *Nodes { return p.classes }

// IsA reports whether the port has class as one of its types.
func (p *Port) IsA(class *Node) bool { return p.classes.Contains(class) }

// Name returns the lv2:name in the World's language, or nil.
func (p *Port) Name() *Node {
	name := p.plugin.world.getNode(p.node, p.plugin.world.uris.lv2Name)
	if !name.IsString() {
		p.plugin.world.log.WithField("plugin", p.plugin.uri.str).Warnf("Port %s has no lv2:name", p.symbol.str)
		return nil
	}
	return name
}

// HasProperty reports whether the port has lv2:portProperty property.
func (p *Port) HasProperty(property *Node) bool {
	w := p.plugin.world
	return w.store.Contains(store.Pattern{S: p.node.term(), P: w.uris.lv2PortProperty, O: property.term()})
}

// SupportsEvent reports whether the port accepts events of type event,
// through either the event or the atom vocabulary.
func (p *Port) SupportsEvent(event *Node) bool {
	w := p.plugin.world
	s := p.node.term()
	return w.store.Contains(store.Pattern{S: s, P: w.uris.supportsEvent, O: event.term()}) ||
		w.store.Contains(store.Pattern{S: s, P: w.uris.atomSupports, O: event.term()})
}

// Value returns the values of predicate for the port, or nil.
func (p *Port) Value(predicate *Node) *Nodes {
	if !predicate.IsURI() {
		return nil
	}
	return p.plugin.world.findNodes(p.node, rdf.IRI{Value: predicate.str})
}

// Get returns one value of predicate for the port, or nil.
func (p *Port) Get(predicate *Node) *Node {
	if !predicate.IsURI() {
		return nil
	}
	return p.plugin.world.getNode(p.node, rdf.IRI{Value: predicate.str})
}

// Properties returns the lv2:portProperty values of the port.
func (p *Port) Properties() *Nodes {
	return p.plugin.world.findNodes(p.node, p.plugin.world.uris.lv2PortProperty)
}

// Range returns lv2:default, lv2:minimum and lv2:maximum. Missing values
// are nil.
func (p *Port) Range() (def, lo, hi *Node) {
	w := p.plugin.world
	return w.getNode(p.node, w.uris.lv2Default),
		w.getNode(p.node, w.uris.lv2Minimum),
		w.getNode(p.node, w.uris.lv2Maximum)
}

// ScalePoints returns the labelled values of the port ordered by value,
// or nil.
func (p *Port) ScalePoints() *Collection[*ScalePoint] {
	w := p.plugin.world
	points := NewCollection(compareScalePoints)
	for q := range w.objects(p.node.term(), w.uris.lv2ScalePoint) {
		point := nodeFromTerm(q.O)
		value := w.getNode(point, w.uris.rdfValue)
		label := w.getNode(point, w.uris.rdfsLabel)
		if value != nil && label != nil {
			points.Insert(&ScalePoint{value: value, label: label})
		}
	}
	if points.Len() == 0 {
		return nil
	}
	return points
}

// ScalePoint is a labelled value a control port may take.
type ScalePoint struct {
	value *Node
	label *Node
}

// Value returns the point's value.
func (s *ScalePoint) Value() *Node { return s.value }

// Label returns the point's label.
func (s *ScalePoint) Label() *Node { return s.label }

func compareScalePoints(a, b *ScalePoint) int {
	if c := a.value.Compare(b.value); c != 0 {
		return c
	}
	return a.label.Compare(b.label)
}
