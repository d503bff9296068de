package lv2

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/geoknoesis/lv2-go/rdf"
	"github.com/geoknoesis/lv2-go/store"
)

// NodeKind tells which of the six value kinds a Node holds.
type NodeKind uint8

const (
	KindURI NodeKind = iota + 1
	KindBlank
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k NodeKind) String() string {
	switch k {
	case KindURI:
		return "uri"
	case KindBlank:
		return "blank"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Node is an immutable RDF value as seen by a host: a URI, a blank node or
// a typed literal. Numeric and boolean literals carry their parsed value
// next to the lexical form.
type Node struct {
	kind     NodeKind
	str      string
	lang     string
	datatype string
	i        int64
	f        float64
	b        bool
}

// NewNode builds a node of kind from its lexical form. Numbers are parsed
// without regard to the process locale; a malformed number yields zero.
func NewNode(kind NodeKind, lexical string) *Node {
	n := &Node{kind: kind, str: lexical}
	switch kind {
	case KindInt:
		n.datatype = rdf.XSDInteger
		if v, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 64); err == nil {
			n.i = v
		}
	case KindFloat:
		n.datatype = rdf.XSDDecimal
		if v, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64); err == nil {
			n.f = v
		}
	case KindBool:
		n.datatype = rdf.XSDBoolean
		n.b = lexical == "true"
	}
	return n
}

// NewURI returns a URI node.
func NewURI(uri string) *Node { return &Node{kind: KindURI, str: uri} }

// NewFileURI returns a file URI node for a filesystem path.
func NewFileURI(path string) *Node { return NewURI(rdf.FileURI(path)) }

// NewBlank returns a blank node with the given label.
func NewBlank(id string) *Node { return &Node{kind: KindBlank, str: id} }

// NewString returns a plain string literal.
func NewString(s string) *Node { return &Node{kind: KindString, str: s} }

// NewLangString returns a string literal tagged with a language.
func NewLangString(s, lang string) *Node {
	return &Node{kind: KindString, str: s, lang: strings.ToLower(lang)}
}

// NewInt returns an integer literal.
func NewInt(v int64) *Node {
	return &Node{kind: KindInt, str: strconv.FormatInt(v, 10), datatype: rdf.XSDInteger, i: v}
}

// NewFloat returns a decimal literal.
func NewFloat(v float64) *Node {
	lexical := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(lexical, ".NI") {
		lexical += ".0"
	}
	return &Node{kind: KindFloat, str: lexical, datatype: rdf.XSDDecimal, f: v}
}

// NewBool returns a boolean literal.
func NewBool(v bool) *Node {
	return &Node{kind: KindBool, str: strconv.FormatBool(v), datatype: rdf.XSDBoolean, b: v}
}

// Duplicate returns a copy of n. It returns nil for a nil node.
func (n *Node) Duplicate() *Node {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Kind returns the node kind, or zero for a nil node.
func (n *Node) Kind() NodeKind {
	if n == nil {
		return 0
	}
	return n.kind
}

// Equals reports whether n and o hold the same value. Two nil nodes are
// equal; a nil node equals nothing else.
func (n *Node) Equals(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindInt:
		return n.i == o.i
	case KindFloat:
		return n.f == o.f || (math.IsNaN(n.f) && math.IsNaN(o.f))
	case KindBool:
		return n.b == o.b
	case KindString:
		return n.str == o.str && n.lang == o.lang
	default:
		return n.str == o.str
	}
}

// Compare orders nodes by kind, then by value. Ints and floats are
// ordered together by numeric value, with the kind breaking ties so that
// 1 and 1.0 stay distinct, as in Equals. NaN sorts before every other
// number. A nil node sorts first.
func (n *Node) Compare(o *Node) int {
	switch {
	case n == nil && o == nil:
		return 0
	case n == nil:
		return -1
	case o == nil:
		return 1
	}
	if n.kind != o.kind {
		if n.IsNumber() && o.IsNumber() {
			if c := compareFloat(n.number(), o.number()); c != 0 {
				return c
			}
		}
		return int(n.kind) - int(o.kind)
	}
	switch n.kind {
	case KindInt:
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	case KindFloat:
		return compareFloat(n.f, o.f)
	case KindBool:
		switch {
		case n.b == o.b:
			return 0
		case !n.b:
			return -1
		}
		return 1
	}
	if c := strings.Compare(n.str, o.str); c != 0 {
		return c
	}
	return strings.Compare(n.lang, o.lang)
}

func compareFloat(a, b float64) int {
	switch aNaN, bNaN := math.IsNaN(a), math.IsNaN(b); {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n *Node) number() float64 {
	if n.kind == KindInt {
		return float64(n.i)
	}
	return n.f
}

// IsURI reports whether n is a URI.
func (n *Node) IsURI() bool { return n.Kind() == KindURI }

// IsBlank reports whether n is a blank node.
func (n *Node) IsBlank() bool { return n.Kind() == KindBlank }

// IsResource reports whether n is a URI or a blank node.
func (n *Node) IsResource() bool { return n.IsURI() || n.IsBlank() }

// IsLiteral reports whether n is a literal of any type.
func (n *Node) IsLiteral() bool {
	switch n.Kind() {
	case KindString, KindInt, KindFloat, KindBool:
		return true
	}
	return false
}

// IsString reports whether n is a string literal.
func (n *Node) IsString() bool { return n.Kind() == KindString }

// IsInt reports whether n is an integer literal.
func (n *Node) IsInt() bool { return n.Kind() == KindInt }

// IsFloat reports whether n is a decimal literal.
func (n *Node) IsFloat() bool { return n.Kind() == KindFloat }

// IsNumber reports whether n is an integer or decimal literal.
func (n *Node) IsNumber() bool { return n.IsInt() || n.IsFloat() }

// IsBool reports whether n is a boolean literal.
func (n *Node) IsBool() bool { return n.Kind() == KindBool }

func (n *Node) wrongKind(want NodeKind) error {
	return fmt.Errorf("%w: %s node used as %s", ErrWrongKind, n.Kind(), want)
}

// AsURI returns the URI of a URI node.
func (n *Node) AsURI() (string, error) {
	if !n.IsURI() {
		return "", n.wrongKind(KindURI)
	}
	return n.str, nil
}

// AsBlank returns the label of a blank node.
func (n *Node) AsBlank() (string, error) {
	if !n.IsBlank() {
		return "", n.wrongKind(KindBlank)
	}
	return n.str, nil
}

// AsString returns the text of a string literal.
func (n *Node) AsString() (string, error) {
	if !n.IsString() {
		return "", n.wrongKind(KindString)
	}
	return n.str, nil
}

// AsInt returns the value of an integer literal.
func (n *Node) AsInt() (int64, error) {
	if !n.IsInt() {
		return 0, n.wrongKind(KindInt)
	}
	return n.i, nil
}

// AsFloat returns the value of a numeric literal. Integers widen.
func (n *Node) AsFloat() (float64, error) {
	if !n.IsNumber() {
		return 0, n.wrongKind(KindFloat)
	}
	return n.number(), nil
}

// AsBool returns the value of a boolean literal.
func (n *Node) AsBool() (bool, error) {
	if !n.IsBool() {
		return false, n.wrongKind(KindBool)
	}
	return n.b, nil
}

// String returns the URI, blank label or lexical form of n.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	return n.str
}

// Lang returns the language tag of a string literal, lowercased.
func (n *Node) Lang() string {
	if n == nil {
		return ""
	}
	return n.lang
}

// Datatype returns the datatype URI of a typed literal.
func (n *Node) Datatype() string {
	if n == nil {
		return ""
	}
	return n.datatype
}

// TurtleToken renders n as it would appear in a Turtle document: URIs in
// angle brackets, blank nodes with a "_:" prefix and literals bare.
func (n *Node) TurtleToken() string {
	switch n.Kind() {
	case KindURI:
		return "<" + n.str + ">"
	case KindBlank:
		return "_:" + n.str
	case 0:
		return ""
	default:
		return n.str
	}
}

// FilePath returns the local path of a file URI node.
func (n *Node) FilePath() (string, error) {
	if !n.IsURI() {
		return "", n.wrongKind(KindURI)
	}
	return rdf.FilePath(n.str)
}

// term converts n back into an RDF term for store lookups.
func (n *Node) term() rdf.Term {
	switch n.Kind() {
	case KindURI:
		return rdf.IRI{Value: n.str}
	case KindBlank:
		return rdf.BlankNode{ID: n.str}
	case KindString:
		lit := rdf.Literal{Lexical: n.str, Lang: n.lang}
		if n.datatype != "" {
			lit.Datatype = rdf.IRI{Value: n.datatype}
		}
		return lit
	case KindInt, KindFloat, KindBool:
		return rdf.Literal{Lexical: n.str, Datatype: rdf.IRI{Value: n.datatype}}
	}
	return nil
}

// nodeFromTerm wraps a store term. Literals are typed by their datatype;
// unknown datatypes become strings.
func nodeFromTerm(t rdf.Term) *Node {
	switch v := t.(type) {
	case rdf.IRI:
		return NewURI(v.Value)
	case rdf.BlankNode:
		return NewBlank(v.ID)
	case rdf.Literal:
		var n *Node
		switch v.Datatype.Value {
		case rdf.XSDBoolean:
			n = NewNode(KindBool, v.Lexical)
		case rdf.XSDDecimal, rdf.XSDDouble, rdf.XSDFloat:
			n = NewNode(KindFloat, v.Lexical)
		case rdf.XSDInteger, rdf.XSDInt, NSXSD + "long", NSXSD + "short",
			NSXSD + "nonNegativeInteger", NSXSD + "positiveInteger", NSXSD + "unsignedInt":
			n = NewNode(KindInt, v.Lexical)
		default:
			v = store.CanonicalLiteral(v)
			return &Node{kind: KindString, str: v.Lexical, lang: v.Lang, datatype: v.Datatype.Value}
		}
		n.datatype = v.Datatype.Value
		return n
	}
	return nil
}
