package rdf

// Sink receives the events of a streaming parse in document order.
//
// A non-nil error from any callback stops the read. Returning ErrStop ends
// the read early and ReadTurtle reports success.
type Sink interface {
	// Base is called when the document changes its base IRI.
	Base(iri string) error
	// Prefix is called when the document declares a namespace prefix.
	Prefix(name, iri string) error
	// Statement is called once per triple.
	Statement(t Triple) error
}

// StatementFunc adapts a function to a Sink that ignores directives.
type StatementFunc func(Triple) error

// Base implements Sink.
func (f StatementFunc) Base(string) error { return nil }

// Prefix implements Sink.
func (f StatementFunc) Prefix(string, string) error { return nil }

// Statement implements Sink.
func (f StatementFunc) Statement(t Triple) error { return f(t) }

// Collect reads every statement into a slice. Intended for small documents.
func Collect(triples *[]Triple) Sink {
	return StatementFunc(func(t Triple) error {
		*triples = append(*triples, t)
		return nil
	})
}
