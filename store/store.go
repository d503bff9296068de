// Package store is an in-memory, graph-tagged quad store.
//
// Every quad carries the graph it was loaded into, so the statements
// contributed by one document can later be removed with EraseGraph and
// nothing else. Pattern matches are lazy and yield quads in insertion
// order, with directly stated quads ahead of inherited ones.
//
// A Store is not safe for concurrent mutation. Concurrent readers are
// fine as long as no writer runs at the same time.
package store

import (
	"iter"
	"strings"

	"github.com/geoknoesis/lv2-go/rdf"
)

// Quad is a triple tagged with the graph it belongs to.
type Quad struct {
	S rdf.Term
	P rdf.IRI
	O rdf.Term
	// G is the graph, or nil for the default graph.
	G rdf.Term
	// Inherited marks quads copied from another resource, such as a
	// prototype. Inherited quads sort after direct ones in matches.
	Inherited bool
}

// Triple returns the quad without its graph.
func (q Quad) Triple() rdf.Triple {
	return rdf.Triple{S: q.S, P: q.P, O: q.O}
}

// Pattern selects quads. Nil fields match anything.
type Pattern struct {
	S rdf.Term
	P rdf.Term
	O rdf.Term
	G rdf.Term
}

type entry struct {
	quad Quad
	key  string
	dead bool
}

// Store holds quads with per-position indexes.
type Store struct {
	all         []*entry
	bySubject   map[string][]*entry
	byPredicate map[string][]*entry
	byObject    map[string][]*entry
	byGraph     map[string][]*entry
	present     map[string]*entry
	live        int
	dead        int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		bySubject:   map[string][]*entry{},
		byPredicate: map[string][]*entry{},
		byObject:    map[string][]*entry{},
		byGraph:     map[string][]*entry{},
		present:     map[string]*entry{},
	}
}

// Len returns the number of quads in the store.
func (s *Store) Len() int { return s.live }

// Add inserts q unless an identical quad is already present. It reports
// whether the store changed.
func (s *Store) Add(q Quad) bool {
	if q.S == nil || q.O == nil {
		return false
	}
	k := quadKey(q)
	if _, ok := s.present[k]; ok {
		return false
	}
	s.maybeCompact()
	e := &entry{quad: q, key: k}
	s.present[k] = e
	s.all = append(s.all, e)
	sk := TermKey(q.S)
	s.bySubject[sk] = append(s.bySubject[sk], e)
	pk := TermKey(q.P)
	s.byPredicate[pk] = append(s.byPredicate[pk], e)
	objKey := TermKey(q.O)
	s.byObject[objKey] = append(s.byObject[objKey], e)
	gk := TermKey(q.G)
	s.byGraph[gk] = append(s.byGraph[gk], e)
	s.live++
	return true
}

// AddTriple inserts t into graph g.
func (s *Store) AddTriple(t rdf.Triple, g rdf.Term) bool {
	return s.Add(Quad{S: t.S, P: t.P, O: t.O, G: g})
}

// Contains reports whether any quad matches p.
func (s *Store) Contains(p Pattern) bool {
	it := s.Find(p)
	defer it.Close()
	return it.Next()
}

// Count returns the number of quads matching p.
func (s *Store) Count(p Pattern) int {
	n := 0
	it := s.Find(p)
	defer it.Close()
	for it.Next() {
		n++
	}
	return n
}

// First returns the first quad matching p.
func (s *Store) First(p Pattern) (Quad, bool) {
	it := s.Find(p)
	defer it.Close()
	if it.Next() {
		return it.Quad(), true
	}
	return Quad{}, false
}

// Match returns a sequence over quads matching p.
func (s *Store) Match(p Pattern) iter.Seq[Quad] {
	return func(yield func(Quad) bool) {
		it := s.Find(p)
		defer it.Close()
		for it.Next() {
			if !yield(it.Quad()) {
				return
			}
		}
	}
}

// Find returns a lazy iterator over quads matching p. Quads added while
// the iterator is open are not visited.
func (s *Store) Find(p Pattern) *Iter {
	return &Iter{store: s, pattern: p, candidates: s.candidates(p)}
}

// EraseGraph removes every quad in graph g and returns how many were removed.
func (s *Store) EraseGraph(g rdf.Term) int {
	gk := TermKey(g)
	n := 0
	for _, e := range s.byGraph[gk] {
		if !e.dead {
			s.kill(e)
			n++
		}
	}
	delete(s.byGraph, gk)
	return n
}

// GraphLen returns the number of quads in graph g.
func (s *Store) GraphLen(g rdf.Term) int {
	n := 0
	for _, e := range s.byGraph[TermKey(g)] {
		if !e.dead {
			n++
		}
	}
	return n
}

// Graphs returns the graphs that currently hold quads, in first-use order.
func (s *Store) Graphs() []rdf.Term {
	var graphs []rdf.Term
	seen := map[string]bool{}
	for _, e := range s.all {
		if e.dead {
			continue
		}
		k := TermKey(e.quad.G)
		if !seen[k] {
			seen[k] = true
			graphs = append(graphs, e.quad.G)
		}
	}
	return graphs
}

func (s *Store) candidates(p Pattern) []*entry {
	best := s.all
	pick := func(t rdf.Term, index map[string][]*entry) {
		if t == nil {
			return
		}
		if list := index[TermKey(t)]; len(list) < len(best) {
			best = list
		}
	}
	if p.S == nil && p.P == nil && p.O == nil && p.G == nil {
		return best
	}
	// Bound positions with no index entry match nothing.
	for _, bound := range []struct {
		t     rdf.Term
		index map[string][]*entry
	}{{p.S, s.bySubject}, {p.P, s.byPredicate}, {p.O, s.byObject}, {p.G, s.byGraph}} {
		if bound.t == nil {
			continue
		}
		if _, ok := bound.index[TermKey(bound.t)]; !ok {
			return nil
		}
		pick(bound.t, bound.index)
	}
	return best
}

func (s *Store) kill(e *entry) {
	e.dead = true
	delete(s.present, e.key)
	s.live--
	s.dead++
}

// maybeCompact drops erased entries once they dominate the indexes.
// Open iterators hold their own candidate slices and are unaffected.
func (s *Store) maybeCompact() {
	if s.dead < 1024 || s.dead < s.live {
		return
	}
	old := s.all
	s.all = nil
	s.bySubject = map[string][]*entry{}
	s.byPredicate = map[string][]*entry{}
	s.byObject = map[string][]*entry{}
	s.byGraph = map[string][]*entry{}
	for _, e := range old {
		if e.dead {
			continue
		}
		s.all = append(s.all, e)
		s.bySubject[TermKey(e.quad.S)] = append(s.bySubject[TermKey(e.quad.S)], e)
		s.byPredicate[TermKey(e.quad.P)] = append(s.byPredicate[TermKey(e.quad.P)], e)
		s.byObject[TermKey(e.quad.O)] = append(s.byObject[TermKey(e.quad.O)], e)
		s.byGraph[TermKey(e.quad.G)] = append(s.byGraph[TermKey(e.quad.G)], e)
	}
	s.dead = 0
}

// Iter walks the quads matching a pattern. Direct quads are visited first,
// then inherited ones, each in insertion order.
type Iter struct {
	store      *Store
	pattern    Pattern
	candidates []*entry
	pos        int
	inherited  bool
	current    *entry
	closed     bool
}

// Next advances to the next matching quad.
func (it *Iter) Next() bool {
	if it.closed {
		return false
	}
	for {
		for it.pos < len(it.candidates) {
			e := it.candidates[it.pos]
			it.pos++
			if e.dead || e.quad.Inherited != it.inherited || !it.pattern.matches(e.quad) {
				continue
			}
			it.current = e
			return true
		}
		if it.inherited {
			it.Close()
			return false
		}
		it.inherited = true
		it.pos = 0
	}
}

// Quad returns the current quad.
func (it *Iter) Quad() Quad {
	if it.current == nil {
		return Quad{}
	}
	return it.current.quad
}

// Erase removes the current quad from the store. Iteration may continue.
func (it *Iter) Erase() {
	if it.current == nil || it.current.dead {
		return
	}
	it.store.kill(it.current)
}

// Close ends the iteration. It is safe to call more than once.
func (it *Iter) Close() {
	it.closed = true
	it.current = nil
}

func (p Pattern) matches(q Quad) bool {
	return (p.S == nil || rdf.TermEqual(p.S, q.S)) &&
		(p.P == nil || rdf.TermEqual(p.P, q.P)) &&
		(p.O == nil || rdf.TermEqual(p.O, q.O)) &&
		(p.G == nil || rdf.TermEqual(p.G, q.G))
}

// TermKey returns a string that identifies t among all RDF terms.
func TermKey(t rdf.Term) string {
	switch v := t.(type) {
	case nil:
		return ""
	case rdf.IRI:
		return "I" + v.Value
	case rdf.BlankNode:
		return "B" + v.ID
	case rdf.Literal:
		var b strings.Builder
		b.WriteString("L")
		b.WriteString(v.Lexical)
		b.WriteByte(0)
		b.WriteString(v.Datatype.Value)
		b.WriteByte(0)
		b.WriteString(v.Lang)
		return b.String()
	default:
		return "?" + t.String()
	}
}

func quadKey(q Quad) string {
	return TermKey(q.S) + "\x01" + TermKey(q.P) + "\x01" + TermKey(q.O) + "\x01" + TermKey(q.G)
}
