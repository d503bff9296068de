package lv2

import (
	"iter"
	"slices"
)

// Collection is a set of values kept sorted by a comparator, so lookups
// are binary searches and iteration order is stable. A nil Collection is
// empty.
type Collection[T any] struct {
	items []T
	cmp   func(a, b T) int
}

// NewCollection returns an empty collection ordered by cmp.
func NewCollection[T any](cmp func(a, b T) int) *Collection[T] {
	return &Collection[T]{cmp: cmp}
}

// Insert adds v unless an equal value is present. It reports whether the
// collection changed.
func (c *Collection[T]) Insert(v T) bool {
	i, found := slices.BinarySearchFunc(c.items, v, c.cmp)
	if found {
		return false
	}
	c.items = slices.Insert(c.items, i, v)
	return true
}

// Remove deletes the value equal to v. It reports whether one was found.
func (c *Collection[T]) Remove(v T) bool {
	if c == nil {
		return false
	}
	i, found := slices.BinarySearchFunc(c.items, v, c.cmp)
	if !found {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// Contains reports whether a value equal to v is present.
func (c *Collection[T]) Contains(v T) bool {
	if c == nil {
		return false
	}
	_, found := slices.BinarySearchFunc(c.items, v, c.cmp)
	return found
}

// Search finds the value for which key returns zero. key must be
// consistent with the collection order: negative for values before the
// target, positive for values after it.
func (c *Collection[T]) Search(key func(T) int) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	i, found := slices.BinarySearchFunc(c.items, 0, func(v T, _ int) int { return key(v) })
	if !found {
		return zero, false
	}
	return c.items[i], true
}

// Len returns the number of values.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Get returns the value at position i.
func (c *Collection[T]) Get(i int) T {
	return c.items[i]
}

// First returns the smallest value.
func (c *Collection[T]) First() (T, bool) {
	var zero T
	if c.Len() == 0 {
		return zero, false
	}
	return c.items[0], true
}

// All yields the values in order.
func (c *Collection[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if c == nil {
			return
		}
		for _, v := range c.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of the values in order.
func (c *Collection[T]) Slice() []T {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

// Nodes is a sorted set of nodes.
type Nodes = Collection[*Node]

// NewNodes returns an empty node set.
func NewNodes() *Nodes {
	return NewCollection(func(a, b *Node) int { return a.Compare(b) })
}

// nodesOf builds a node set from values, or returns nil when there are none.
func nodesOf(values []*Node) *Nodes {
	if len(values) == 0 {
		return nil
	}
	nodes := NewNodes()
	for _, v := range values {
		nodes.Insert(v)
	}
	return nodes
}

// Merge returns the union of a and b. Either may be nil.
func Merge(a, b *Nodes) *Nodes {
	if a.Len() == 0 && b.Len() == 0 {
		return nil
	}
	out := NewNodes()
	for n := range a.All() {
		out.Insert(n)
	}
	for n := range b.All() {
		out.Insert(n)
	}
	return out
}
