package lv2

import (
	"fmt"
	"iter"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// FindNodes returns the values matching a pattern with exactly one of
// subject or object left nil: the objects of (subject, predicate, *) or
// the subjects of (*, predicate, object). String literals are filtered
// by language.
func (w *World) FindNodes(subject, predicate, object *Node) (*Nodes, error) {
	if err := w.checkQuery(subject, predicate, object); err != nil {
		return nil, err
	}
	if subject == nil {
		return w.nodesFromMatches(w.match(nil, predicate.term(), object.term()), store.Subjects), nil
	}
	var o rdf.Term
	if object != nil {
		o = object.term()
	}
	return w.nodesFromMatches(w.match(subject.term(), predicate.term(), o), store.Objects), nil
}

// Get returns a single value of a pattern with one end left nil, or nil
// when nothing matches.
func (w *World) Get(subject, predicate, object *Node) *Node {
	if err := w.checkQuery(subject, predicate, object); err != nil {
		return nil
	}
	if subject == nil {
		return w.nodeFromMatches(w.match(nil, predicate.term(), object.term()), store.Subjects)
	}
	var o rdf.Term
	if object != nil {
		o = object.term()
	}
	return w.nodeFromMatches(w.match(subject.term(), predicate.term(), o), store.Objects)
}

// Ask reports whether any statement matches. Nil nodes match anything.
func (w *World) Ask(subject, predicate, object *Node) bool {
	var p store.Pattern
	if subject != nil {
		p.S = subject.term()
	}
	if predicate != nil {
		p.P = predicate.term()
	}
	if object != nil {
		p.O = object.term()
	}
	return w.store.Contains(p)
}

func (w *World) checkQuery(subject, predicate, object *Node) error {
	switch {
	case predicate == nil:
		w.log.Errorf("Missing required predicate")
		return fmt.Errorf("%w: missing predicate", ErrInvalidQuery)
	case !predicate.IsURI():
		w.log.Errorf("Predicate %q is not a URI", predicate.String())
		return fmt.Errorf("%w: predicate %q is not a URI", ErrInvalidQuery, predicate.String())
	case subject == nil && object == nil:
		w.log.Errorf("Both subject and object are nil")
		return fmt.Errorf("%w: both subject and object are nil", ErrInvalidQuery)
	case subject != nil && !subject.IsResource():
		w.log.Errorf("Subject %q is not a resource", subject.String())
		return fmt.Errorf("%w: subject %q is not a resource", ErrInvalidQuery, subject.String())
	}
	return nil
}

func (w *World) match(s, p, o rdf.Term) iter.Seq[store.Quad] {
	return w.store.Match(store.Pattern{S: s, P: p, O: o})
}

// objects yields the objects of (subject, predicate, *).
func (w *World) objects(subject rdf.Term, predicate rdf.IRI) iter.Seq[store.Quad] {
	return w.match(subject, predicate, nil)
}

// getNode returns the language-selected object of (subject, predicate).
func (w *World) getNode(subject *Node, predicate rdf.IRI) *Node {
	if !subject.IsResource() {
		return nil
	}
	return w.nodeFromMatches(w.objects(subject.term(), predicate), store.Objects)
}

// findNodes returns the language-filtered objects of (subject, predicate).
func (w *World) findNodes(subject *Node, predicate rdf.IRI) *Nodes {
	if !subject.IsResource() {
		return nil
	}
	return w.nodesFromMatches(w.objects(subject.term(), predicate), store.Objects)
}

// firstObject returns the first object of (subject, predicate) without
// any language selection.
func (w *World) firstObject(subject rdf.Term, predicate rdf.IRI) *Node {
	if q, ok := w.store.First(store.Pattern{S: subject, P: predicate}); ok {
		return nodeFromTerm(q.O)
	}
	return nil
}

func pick(q store.Quad, at store.Position) rdf.Term {
	if at == store.Subjects {
		return q.S
	}
	return q.O
}

// nodesFromMatches collects one end of each match. With filtering on,
// every resource and every exact-language literal is kept; if no value
// survives, a single fallback literal is chosen: a partial language match
// when the World has a language, otherwise an untagged value, otherwise
// any partial match.
func (w *World) nodesFromMatches(matches iter.Seq[store.Quad], at store.Position) *Nodes {
	values := NewNodes()
	if !w.opts.FilterLang {
		for q := range matches {
			values.Insert(nodeFromTerm(pick(q, at)))
		}
		return nilIfEmpty(values)
	}
	var noLang, partial rdf.Term
	for q := range matches {
		t := pick(q, at)
		lit, ok := t.(rdf.Literal)
		if !ok {
			values.Insert(nodeFromTerm(t))
			continue
		}
		if lit.Lang == "" {
			noLang = t
			continue
		}
		switch matchLang(lit.Lang, w.lang) {
		case langMatchExact:
			values.Insert(nodeFromTerm(t))
		case langMatchPartial:
			partial = t
		}
	}
	if values.Len() > 0 {
		return values
	}
	best := noLang
	if w.lang != "" && partial != nil {
		best = partial
	} else if best == nil {
		best = partial
	}
	if best == nil {
		return nil
	}
	values.Insert(nodeFromTerm(best))
	return values
}

// nodeFromMatches is the single-value form of nodesFromMatches. The first
// resource or exact-language literal in match order wins outright, and the
// fallbacks keep their first candidate so direct statements beat
// inherited ones.
func (w *World) nodeFromMatches(matches iter.Seq[store.Quad], at store.Position) *Node {
	var noLang, partial rdf.Term
	for q := range matches {
		t := pick(q, at)
		lit, ok := t.(rdf.Literal)
		if !ok || !w.opts.FilterLang {
			return nodeFromTerm(t)
		}
		if lit.Lang == "" {
			// Unlike nodesFromMatches, keep the first candidate: matches
			// list direct statements ahead of inherited ones.
			if noLang == nil {
				noLang = t
			}
			continue
		}
		switch matchLang(lit.Lang, w.lang) {
		case langMatchExact:
			return nodeFromTerm(t)
		case langMatchPartial:
			if partial == nil {
				partial = t
			}
		}
	}
	best := noLang
	if w.lang != "" && partial != nil {
		best = partial
	} else if best == nil {
		best = partial
	}
	if best == nil {
		return nil
	}
	return nodeFromTerm(best)
}

func nilIfEmpty(nodes *Nodes) *Nodes {
	if nodes.Len() == 0 {
		return nil
	}
	return nodes
}
