package rdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string, opts DecodeOptions) []Triple {
	t.Helper()
	var triples []Triple
	if err := ReadTurtleString(input, "http://example.org/doc", Collect(&triples), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return triples
}

func TestTurtleDirectiveAndPrefixedName(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\nex:s ex:p \"v\" .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
	if triples[0].P.Value != "http://example.org/p" {
		t.Fatalf("unexpected predicate: %s", triples[0].P.Value)
	}
}

func TestTurtleSPARQLDirectives(t *testing.T) {
	input := "PREFIX ex: <http://example.org/>\nBASE <http://example.org/base/>\n<rel> ex:p ex:o .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
	if iri, ok := triples[0].S.(IRI); !ok || iri.Value != "http://example.org/base/rel" {
		t.Fatalf("unexpected subject: %#v", triples[0].S)
	}
}

func TestTurtleBaseIRI(t *testing.T) {
	input := "<rel> <http://example.org/p> <../o> .\n"
	var triples []Triple
	if err := ReadTurtleString(input, "http://example.org/a/b", Collect(&triples), DefaultDecodeOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iri, ok := triples[0].S.(IRI); !ok || iri.Value != "http://example.org/a/rel" {
		t.Fatalf("unexpected base IRI resolution: %#v", triples[0].S)
	}
	if iri, ok := triples[0].O.(IRI); !ok || iri.Value != "http://example.org/o" {
		t.Fatalf("unexpected object resolution: %#v", triples[0].O)
	}
}

func TestTurtleMultiLineStatement(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
# a comment with a . dot
ex:s
    a ex:Plugin ;   # trailing comment
    ex:name "Amp" ,
        "Verstärker"@de ;
    ex:doc """Line one.
# not a comment
Line three.""" .
`
	triples := readAll(t, input, DefaultDecodeOptions())
	if len(triples) != 4 {
		t.Fatalf("expected 4 triples, got %d: %v", len(triples), triples)
	}
	if triples[0].P.Value != RDFType {
		t.Fatalf("expected rdf:type, got %s", triples[0].P.Value)
	}
	de, ok := triples[2].O.(Literal)
	if !ok || de.Lang != "de" || de.Lexical != "Verstärker" {
		t.Fatalf("unexpected language literal: %#v", triples[2].O)
	}
	doc := triples[3].O.(Literal)
	if doc.Lexical != "Line one.\n# not a comment\nLine three." {
		t.Fatalf("unexpected long literal: %q", doc.Lexical)
	}
}

func TestTurtleLiteralDatatypes(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\n" +
		"ex:s ex:i 4 ; ex:d -1.5 ; ex:e 1e3 ; ex:b true ; ex:t \"x\"^^<http://example.org/T> .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	want := []string{XSDInteger, XSDDecimal, XSDDouble, XSDBoolean, "http://example.org/T"}
	if len(triples) != len(want) {
		t.Fatalf("expected %d triples, got %d", len(want), len(triples))
	}
	for i, dt := range want {
		lit, ok := triples[i].O.(Literal)
		if !ok || lit.Datatype.Value != dt {
			t.Fatalf("triple %d: expected datatype %s, got %#v", i, dt, triples[i].O)
		}
	}
}

func TestTurtleStatementEndingInInteger(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\nex:s ex:index 0.\nex:s ex:next 1 .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	if len(triples) != 2 {
		t.Fatalf("expected 2 triples, got %d", len(triples))
	}
	if lit := triples[0].O.(Literal); lit.Lexical != "0" || lit.Datatype.Value != XSDInteger {
		t.Fatalf("unexpected literal: %#v", lit)
	}
}

func TestTurtleBlankNodePropertyList(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
ex:plugin ex:port [
    a ex:InputPort ;
    ex:index 0 ;
    ex:symbol "in"
] , [
    ex:index 1 ;
] .
`
	triples := readAll(t, input, DefaultDecodeOptions())
	var ports []Term
	for _, tr := range triples {
		if tr.P.Value == "http://example.org/port" {
			ports = append(ports, tr.O)
		}
	}
	if len(ports) != 2 {
		t.Fatalf("expected 2 ports, got %d", len(ports))
	}
	if TermEqual(ports[0], ports[1]) {
		t.Fatalf("expected distinct blank nodes, got %v twice", ports[0])
	}
	if len(triples) != 6 {
		t.Fatalf("expected 6 triples, got %d", len(triples))
	}
}

func TestTurtleCollection(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\nex:s ex:list ( 1 2 ) .\nex:s ex:empty () .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	if len(triples) != 6 {
		t.Fatalf("expected 6 triples, got %d: %v", len(triples), triples)
	}
	if iri, ok := triples[5].O.(IRI); !ok || iri.Value != RDFNil {
		t.Fatalf("expected rdf:nil for empty list, got %#v", triples[5].O)
	}
}

func TestTurtleBlankPrefixAndUniqueness(t *testing.T) {
	input := "_:a <http://example.org/p> [] .\n_:a <http://example.org/p> [] .\n"
	opts := DefaultDecodeOptions()
	opts.BlankPrefix = "f1"
	triples := readAll(t, input, opts)
	if triples[0].S.(BlankNode).ID != "f1a" {
		t.Fatalf("expected prefixed label, got %v", triples[0].S)
	}
	if TermEqual(triples[0].O, triples[1].O) {
		t.Fatalf("anonymous nodes in separate statements must differ")
	}
}

func TestTurtleEscapes(t *testing.T) {
	input := "<http://example.org/s\\u0041> <http://example.org/p> \"tab\\tquote\\\"\\u00e9\" .\n"
	triples := readAll(t, input, DefaultDecodeOptions())
	if triples[0].S.(IRI).Value != "http://example.org/sA" {
		t.Fatalf("unexpected IRI: %v", triples[0].S)
	}
	if triples[0].O.(Literal).Lexical != "tab\tquote\"é" {
		t.Fatalf("unexpected literal: %q", triples[0].O.(Literal).Lexical)
	}
}

func TestDecodeEscape(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		n       int
		wantErr bool
	}{
		{in: `\n`, want: "\n", n: 2},
		{in: `\u00e9x`, want: "é", n: 6},
		{in: `\U0001F600`, want: "\U0001F600", n: 10},
		{in: `\uD83D\uDE00`, want: "\U0001F600", n: 12},
		{in: `\uD83D`, wantErr: true},
		{in: `\uDE00`, wantErr: true},
		{in: `\U00110000`, wantErr: true},
		{in: `\u00g1`, wantErr: true},
		{in: `\q`, wantErr: true},
		{in: `\`, wantErr: true},
	}
	for _, tt := range tests {
		got, n, err := decodeEscape(tt.in, 0)
		if (err != nil) != tt.wantErr {
			t.Fatalf("decodeEscape(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && (got != tt.want || n != tt.n) {
			t.Fatalf("decodeEscape(%q) = %q, %d; want %q, %d", tt.in, got, n, tt.want, tt.n)
		}
	}
}

func TestLangTagAndPrefixNames(t *testing.T) {
	for tag, want := range map[string]bool{
		"en": true, "fr-CA": true, "de-1996": true, "ar--rtl": true,
		"": false, "en-": false, "1en": false, "toolongtag": false, "en--up": false, "a--ltr--rtl": false,
	} {
		if got := isValidLangTag(tag); got != want {
			t.Fatalf("isValidLangTag(%q) = %v, want %v", tag, got, want)
		}
	}
	for prefix, want := range map[string]bool{
		"": true, "lv2": true, "a.b": true, "_x": true, "ex-1": true,
		".a": false, "a.": false, "1a": false, "a b": false,
	} {
		if got := isValidPrefixName(prefix); got != want {
			t.Fatalf("isValidPrefixName(%q) = %v, want %v", prefix, got, want)
		}
	}
}

func TestTurtlePrefixCallbacks(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\n@base <http://example.org/b/> .\n"
	var prefixes, bases []string
	sink := &recordingSink{
		prefix: func(name, iri string) { prefixes = append(prefixes, name+"="+iri) },
		base:   func(iri string) { bases = append(bases, iri) },
	}
	if err := ReadTurtleString(input, "", sink, DefaultDecodeOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefixes) != 1 || prefixes[0] != "ex=http://example.org/" {
		t.Fatalf("unexpected prefixes: %v", prefixes)
	}
	if len(bases) != 1 || bases[0] != "http://example.org/b/" {
		t.Fatalf("unexpected bases: %v", bases)
	}
}

func TestTurtleUnknownPrefixReportsLine(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n\nfoo:s <http://example.org/p> 1 .\n"
	var triples []Triple
	err := ReadTurtleString(input, "", Collect(&triples), DefaultDecodeOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if parseErr.Line != 3 {
		t.Fatalf("expected line 3, got %d", parseErr.Line)
	}
	if Code(err) != ErrCodeUnknownPrefix {
		t.Fatalf("expected ErrCodeUnknownPrefix, got %v", Code(err))
	}
	if len(triples) != 1 {
		t.Fatalf("statements before the error should be delivered, got %d", len(triples))
	}
}

func TestTurtleInvalidPredicate(t *testing.T) {
	input := "_:b1 \"literal\" <http://example.org/o> .\n"
	err := ReadTurtleString(input, "", StatementFunc(func(Triple) error { return nil }), DefaultDecodeOptions())
	if err == nil {
		t.Fatal("expected predicate error")
	}
	if Code(err) != ErrCodeParseError {
		t.Fatalf("expected ErrCodeParseError, got %v", Code(err))
	}
}

func TestTurtleUnterminatedStatement(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o>"
	err := ReadTurtleString(input, "", StatementFunc(func(Triple) error { return nil }), DefaultDecodeOptions())
	if err == nil {
		t.Fatal("expected error for missing '.'")
	}
}

func TestTurtleStopEarly(t *testing.T) {
	input := strings.Repeat("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n", 5)
	count := 0
	err := ReadTurtleString(input, "", StatementFunc(func(Triple) error {
		count++
		if count == 2 {
			return ErrStop
		}
		return nil
	}), DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("ErrStop should end the read cleanly, got %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 statements, got %d", count)
	}
}

func TestTurtleSinkError(t *testing.T) {
	boom := errors.New("boom")
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	err := ReadTurtleString(input, "", StatementFunc(func(Triple) error { return boom }), DefaultDecodeOptions())
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if Code(err) != ErrCodeSinkAborted {
		t.Fatalf("expected ErrCodeSinkAborted, got %v", Code(err))
	}
}

func TestErrorCode_LineTooLong(t *testing.T) {
	input := "<http://example.org/" + strings.Repeat("a", 256) + "> <http://example.org/p> 1 .\n"
	opts := DecodeOptions{MaxLineBytes: 64}
	err := ReadTurtleString(input, "", StatementFunc(func(Triple) error { return nil }), opts)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := Code(err); code != ErrCodeLineTooLong {
		t.Errorf("expected ErrCodeLineTooLong, got %v", code)
	}
}

func TestErrorCode_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultDecodeOptions()
	opts.Context = ctx
	err := ReadTurtleString("<s> <p> <o> .", "http://example.org/", StatementFunc(func(Triple) error { return nil }), opts)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := Code(err); code != ErrCodeContextCanceled {
		t.Errorf("expected ErrCodeContextCanceled, got %v", code)
	}
}

func TestReadTurtleFileDefaultsBaseToFileURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.ttl")
	if err := os.WriteFile(path, []byte("<plugin> <http://example.org/p> <data.ttl> .\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var triples []Triple
	if err := ReadTurtleFile(path, "", Collect(&triples), DefaultDecodeOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FileURI(filepath.Join(dir, "data.ttl"))
	if got := triples[0].O.(IRI).Value; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFileURIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "with space", "x.ttl")
	uri := FileURI(path)
	if !strings.HasPrefix(uri, "file:///") {
		t.Fatalf("unexpected URI: %s", uri)
	}
	if strings.Contains(uri, " ") {
		t.Fatalf("expected escaped URI, got %s", uri)
	}
	back, err := FilePath(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != path {
		t.Fatalf("expected %s, got %s", path, back)
	}
	if _, err := FilePath("http://example.org/x"); !errors.Is(err, ErrInvalidIRI) {
		t.Fatalf("expected ErrInvalidIRI, got %v", err)
	}
}

func TestFileURIKeepsTrailingSlash(t *testing.T) {
	dir := t.TempDir() + string(filepath.Separator)
	if uri := FileURI(dir); !strings.HasSuffix(uri, "/") {
		t.Fatalf("expected trailing slash, got %s", uri)
	}
}

func TestValidateIRI(t *testing.T) {
	tests := []struct {
		name    string
		iri     string
		wantErr bool
	}{
		{name: "absolute http", iri: "http://example.org/resource", wantErr: false},
		{name: "urn", iri: "urn:example:plugin", wantErr: false},
		{name: "relative path", iri: "../data.ttl", wantErr: false},
		{name: "empty", iri: "", wantErr: true},
		{name: "raw angle bracket", iri: "http://example.org/<x>", wantErr: true},
		{name: "network path without scheme", iri: "//example.org/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIRI(tt.iri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateIRI(%q) error = %v, wantErr %v", tt.iri, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidIRI) {
				t.Fatalf("expected ErrInvalidIRI, got %v", err)
			}
		})
	}
}

type recordingSink struct {
	prefix func(name, iri string)
	base   func(iri string)
}

func (s *recordingSink) Base(iri string) error {
	s.base(iri)
	return nil
}

func (s *recordingSink) Prefix(name, iri string) error {
	s.prefix(name, iri)
	return nil
}

func (s *recordingSink) Statement(Triple) error { return nil }
