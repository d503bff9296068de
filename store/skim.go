package store

import (
	"strings"

	"github.com/geoknoesis/lv2-go/rdf"
)

// Loader is an rdf.Sink that forwards parsed statements into a Store,
// tagging each with Graph. Literal objects are stored in canonical form:
// language tags lowercased and xsd:string folded into the plain literal.
type Loader struct {
	Store *Store
	Graph rdf.Term
	// Inherited is copied onto every inserted quad.
	Inherited bool
	// Filter may rewrite a statement or drop it by returning false.
	Filter func(rdf.Triple) (rdf.Triple, bool)
	// Added counts the quads that changed the store.
	Added int
}

// NewLoader returns a Loader that inserts into graph g of s.
func NewLoader(s *Store, g rdf.Term) *Loader {
	return &Loader{Store: s, Graph: g}
}

// Base implements rdf.Sink.
func (l *Loader) Base(string) error { return nil }

// Prefix implements rdf.Sink.
func (l *Loader) Prefix(string, string) error { return nil }

// Statement implements rdf.Sink.
func (l *Loader) Statement(t rdf.Triple) error {
	if l.Filter != nil {
		var keep bool
		if t, keep = l.Filter(t); !keep {
			return nil
		}
	}
	if lit, ok := t.O.(rdf.Literal); ok {
		t.O = CanonicalLiteral(lit)
	}
	if l.Store.Add(Quad{S: t.S, P: t.P, O: t.O, G: l.Graph, Inherited: l.Inherited}) {
		l.Added++
	}
	return nil
}

// CanonicalLiteral returns lit with a lowercase language tag and without
// an explicit xsd:string datatype, which RDF treats as the plain literal.
func CanonicalLiteral(lit rdf.Literal) rdf.Literal {
	if lit.Lang != "" {
		lit.Lang = strings.ToLower(lit.Lang)
		lit.Datatype = rdf.IRI{}
	} else if lit.Datatype.Value == rdf.XSDString {
		lit.Datatype = rdf.IRI{}
	}
	return lit
}

// Position selects which end of a matching statement a Skimmer collects.
type Position int

const (
	// Objects collects the objects of matching statements.
	Objects Position = iota
	// Subjects collects the subjects of matching statements.
	Subjects
)

// Skimmer is an rdf.Sink that collects nodes from matching statements
// without touching any store. It is used to answer narrow questions about
// a document, such as which subjects are plugins or what version a bundle
// declares, without loading the document.
type Skimmer struct {
	subject    rdf.Term
	object     rdf.Term
	predicates map[string]bool
	collect    Position

	order []string
	nodes map[string][]rdf.Term
	seen  map[string]bool
}

// NewSkimmer returns a skimmer that matches statements with the given
// subject and object (nil matches anything) and any of the given
// predicates (none matches every predicate).
func NewSkimmer(subject, object rdf.Term, collect Position, predicates ...string) *Skimmer {
	s := &Skimmer{
		subject: subject,
		object:  object,
		collect: collect,
		nodes:   map[string][]rdf.Term{},
		seen:    map[string]bool{},
	}
	if len(predicates) > 0 {
		s.predicates = map[string]bool{}
		for _, p := range predicates {
			s.predicates[p] = true
		}
	}
	return s
}

// Base implements rdf.Sink.
func (s *Skimmer) Base(string) error { return nil }

// Prefix implements rdf.Sink.
func (s *Skimmer) Prefix(string, string) error { return nil }

// Statement implements rdf.Sink.
func (s *Skimmer) Statement(t rdf.Triple) error {
	if s.predicates != nil && !s.predicates[t.P.Value] {
		return nil
	}
	if s.subject != nil && !rdf.TermEqual(s.subject, t.S) {
		return nil
	}
	if s.object != nil && !rdf.TermEqual(s.object, t.O) {
		return nil
	}
	node := t.O
	if s.collect == Subjects {
		node = t.S
	}
	key := t.P.Value + "\x00" + TermKey(node)
	if s.seen[key] {
		return nil
	}
	s.seen[key] = true
	if _, ok := s.nodes[t.P.Value]; !ok {
		s.order = append(s.order, t.P.Value)
	}
	s.nodes[t.P.Value] = append(s.nodes[t.P.Value], node)
	return nil
}

// Nodes returns the nodes collected for predicate, in document order.
func (s *Skimmer) Nodes(predicate string) []rdf.Term {
	return s.nodes[predicate]
}

// First returns the first node collected for predicate.
func (s *Skimmer) First(predicate string) (rdf.Term, bool) {
	if nodes := s.nodes[predicate]; len(nodes) > 0 {
		return nodes[0], true
	}
	return nil, false
}

// All returns every distinct collected node, grouped by predicate in the
// order predicates were first seen.
func (s *Skimmer) All() []rdf.Term {
	var all []rdf.Term
	seen := map[string]bool{}
	for _, p := range s.order {
		for _, n := range s.nodes[p] {
			if k := TermKey(n); !seen[k] {
				seen[k] = true
				all = append(all, n)
			}
		}
	}
	return all
}

// Len returns the number of distinct (predicate, node) pairs collected.
func (s *Skimmer) Len() int { return len(s.seen) }
