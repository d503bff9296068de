package rdf

import (
	"fmt"
	"strings"
)

// turtleState is the document-level parser state shared by all statements.
type turtleState struct {
	prefixes     map[string]string
	base         string
	blankPrefix  string
	blankCounter int
}

func newTurtleState(baseIRI, blankPrefix string) *turtleState {
	return &turtleState{
		prefixes:    map[string]string{},
		base:        baseIRI,
		blankPrefix: blankPrefix,
	}
}

func (s *turtleState) newBlankNode() BlankNode {
	s.blankCounter++
	return BlankNode{ID: fmt.Sprintf("%sgenid%d", s.blankPrefix, s.blankCounter)}
}

// syntaxError records the byte offset of a failure within a statement.
type syntaxError struct {
	pos int
	err error
}

func (e *syntaxError) Error() string { return e.err.Error() }

func (e *syntaxError) Unwrap() error { return e.err }

type turtleCursor struct {
	input                 string
	pos                   int
	state                 *turtleState
	expansionTriples      []Triple // Triples generated from collections and blank node property lists
	lastTermBlankNodeList bool
	debugStatements       bool
}

func newTurtleCursor(state *turtleState, input string, debug bool) *turtleCursor {
	return &turtleCursor{input: input, state: state, debugStatements: debug}
}

// parseStatement parses one directive or triples statement. Directives are
// reported to sink as they are read; triples are returned.
func (c *turtleCursor) parseStatement(sink Sink) ([]Triple, error) {
	c.skipWS()
	if handled, err := c.parseDirective(sink); handled || err != nil {
		return nil, err
	}
	subject, err := c.parseSubject()
	if err != nil {
		return nil, err
	}
	c.skipWS()
	// Allow blank node property list as a standalone triple (no predicateObjectList)
	if c.lastTermBlankNodeList && c.pos < len(c.input) && c.input[c.pos] == '.' {
		c.pos++
		if err := c.ensureLineEnd(); err != nil {
			return nil, err
		}
		return c.expansionTriples, nil
	}

	triples, err := c.parsePredicateObjectList(subject)
	if err != nil {
		return nil, err
	}

	// Append expansion triples (from collections and blank node property lists)
	triples = append(triples, c.expansionTriples...)
	return triples, nil
}

// parseDirective handles @prefix, @base and their SPARQL-style forms.
func (c *turtleCursor) parseDirective(sink Sink) (bool, error) {
	keyword, sparql := c.directiveKeyword()
	if keyword == "" {
		return false, nil
	}
	c.skipWS()
	switch keyword {
	case "prefix":
		start := c.pos
		for c.pos < len(c.input) && c.input[c.pos] != ':' && !isTurtleSpace(c.input[c.pos]) {
			c.pos++
		}
		if c.pos >= len(c.input) || c.input[c.pos] != ':' {
			return true, c.errorf("expected ':' in prefix declaration")
		}
		name := c.input[start:c.pos]
		if !isValidPrefixName(name) {
			return true, c.errorf("invalid prefix name %q", name)
		}
		c.pos++
		c.skipWS()
		iri, err := c.parseIRI()
		if err != nil {
			return true, err
		}
		c.state.prefixes[name] = iri.(IRI).Value
		if err := sink.Prefix(name, iri.(IRI).Value); err != nil {
			return true, &SinkError{Err: err}
		}
	case "base":
		iri, err := c.parseIRI()
		if err != nil {
			return true, err
		}
		c.state.base = iri.(IRI).Value
		if err := sink.Base(c.state.base); err != nil {
			return true, &SinkError{Err: err}
		}
	}
	if !sparql {
		if !c.consume('.') {
			return true, c.errorf("expected '.' after directive")
		}
	}
	return true, c.ensureLineEnd()
}

func (c *turtleCursor) directiveKeyword() (string, bool) {
	rest := c.input[c.pos:]
	match := func(word string, fold bool) bool {
		if len(rest) <= len(word) || !isTurtleSpace(rest[len(word)]) {
			return false
		}
		if fold {
			return strings.EqualFold(rest[:len(word)], word)
		}
		return rest[:len(word)] == word
	}
	switch {
	case match(directiveAtPrefix, false):
		c.pos += len(directiveAtPrefix)
		return "prefix", false
	case match(directiveAtBase, false):
		c.pos += len(directiveAtBase)
		return "base", false
	case match(directivePrefix, true):
		c.pos += len(directivePrefix)
		return "prefix", true
	case match(directiveBase, true):
		c.pos += len(directiveBase)
		return "base", true
	}
	return "", false
}

func (c *turtleCursor) skipWS() {
	for c.pos < len(c.input) && isTurtleSpace(c.input[c.pos]) {
		c.pos++
	}
}

func (c *turtleCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *turtleCursor) ensureLineEnd() error {
	c.skipWS()
	if c.pos < len(c.input) {
		return c.errorf("unexpected content after '.'")
	}
	return nil
}

func (c *turtleCursor) parseSubject() (Term, error) {
	c.skipWS()
	term, err := c.parseTerm(false)
	if err != nil {
		return nil, err
	}
	return term, nil
}

func (c *turtleCursor) parsePredicate() (IRI, error) {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == 'a' && isTermDelimiter(c.peekNext()) {
		c.pos++
		return IRI{Value: RDFType}, nil
	}
	term, err := c.parseTerm(false)
	if err != nil {
		return IRI{}, err
	}
	if iri, ok := term.(IRI); ok {
		return iri, nil
	}
	return IRI{}, c.errorf("predicate must be IRI")
}

func (c *turtleCursor) parseObjectList(subject Term, predicate IRI) ([]Triple, bool, error) {
	var triples []Triple
	for {
		object, err := c.parseTerm(true)
		if err != nil {
			return nil, false, err
		}
		triples = append(triples, Triple{S: subject, P: predicate, O: object})

		c.skipWS()
		if c.pos < len(c.input) && c.input[c.pos] == ',' {
			c.pos++
			continue
		}
		if c.pos < len(c.input) && c.input[c.pos] == '.' {
			c.pos++
			if err := c.ensureLineEnd(); err != nil {
				return nil, false, err
			}
			return triples, true, nil
		}
		return triples, false, nil
	}
}

func (c *turtleCursor) parsePredicateObjectList(subject Term) ([]Triple, error) {
	var triples []Triple
	for {
		predicate, err := c.parsePredicate()
		if err != nil {
			return nil, err
		}

		objectTriples, ended, err := c.parseObjectList(subject, predicate)
		if err != nil {
			return nil, err
		}
		triples = append(triples, objectTriples...)
		if ended {
			return triples, nil
		}

		c.skipWS()
		// Repeated semicolons are allowed
		hadSemicolon := false
		for c.pos < len(c.input) && c.input[c.pos] == ';' {
			hadSemicolon = true
			c.pos++
			c.skipWS()
		}
		if c.pos < len(c.input) && c.input[c.pos] == '.' {
			c.pos++
			if err := c.ensureLineEnd(); err != nil {
				return nil, err
			}
			return triples, nil
		}
		if hadSemicolon {
			continue
		}
		if c.pos >= len(c.input) {
			return nil, c.errorf("expected '.' at end of statement")
		}
		if c.debugStatements {
			end := c.pos + 40
			if end > len(c.input) {
				end = len(c.input)
			}
			return nil, c.errorf("expected ',' or ';' or '.' near %q", c.input[c.pos:end])
		}
		return nil, c.errorf("expected ',' or ';' or '.'")
	}
}

func (c *turtleCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	c.lastTermBlankNodeList = false
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of statement")
	}
	rest := c.input[c.pos:]
	switch {
	case rest[0] == '<':
		return c.parseIRI()
	case strings.HasPrefix(rest, "_:"):
		return c.parseBlankNode()
	case rest[0] == '[':
		return c.parseBlankNodePropertyList()
	case rest[0] == '(':
		return c.parseCollection()
	case rest[0] == '"' || rest[0] == '\'':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral(rest[0])
	}
	if allowLiteral {
		if num, ok := c.tryParseNumericLiteral(); ok {
			return num, nil
		}
		if boolVal, ok := c.tryParseBooleanLiteral(); ok {
			return boolVal, nil
		}
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) parseIRI() (Term, error) {
	if !c.consume('<') {
		return nil, c.errorf("expected IRI")
	}
	var builder strings.Builder
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		ch := c.input[c.pos]
		if ch == '\\' {
			if c.pos+1 >= len(c.input) || (c.input[c.pos+1] != 'u' && c.input[c.pos+1] != 'U') {
				return nil, c.fail(fmt.Errorf("%w: bad escape", ErrInvalidIRI))
			}
			decoded, advance, err := decodeEscape(c.input, c.pos)
			if err != nil {
				return nil, c.fail(fmt.Errorf("%w: %v", ErrInvalidIRI, err))
			}
			for _, r := range decoded {
				if isDisallowedIRIChar(r) {
					return nil, c.fail(fmt.Errorf("%w: invalid character", ErrInvalidIRI))
				}
			}
			builder.WriteString(decoded)
			c.pos += advance
			continue
		}
		if isDisallowedIRIChar(rune(ch)) {
			return nil, c.fail(fmt.Errorf("%w: invalid character %q", ErrInvalidIRI, ch))
		}
		builder.WriteByte(ch)
		c.pos++
	}
	if c.pos >= len(c.input) {
		return nil, c.fail(fmt.Errorf("%w: unterminated", ErrInvalidIRI))
	}
	c.pos++

	value := builder.String()
	if c.state.base != "" {
		return IRI{Value: resolveIRI(c.state.base, value)}, nil
	}
	return IRI{Value: value}, nil
}

func isDisallowedIRIChar(codePoint rune) bool {
	if codePoint <= 0x20 || (codePoint >= 0x7F && codePoint <= 0x9F) {
		return true
	}
	switch codePoint {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}

func (c *turtleCursor) tryParseNumericLiteral() (Literal, bool) {
	start := c.pos
	if c.pos < len(c.input) && (c.input[c.pos] == '+' || c.input[c.pos] == '-') {
		c.pos++
	}

	if c.pos >= len(c.input) {
		c.pos = start
		return Literal{}, false
	}

	hasDot := false
	hasExponent := false
	hasDigits := false

	// Handle numbers that start with '.' (e.g. .1 or +.7)
	if c.input[c.pos] == '.' {
		if c.pos+1 < len(c.input) && c.input[c.pos+1] >= '0' && c.input[c.pos+1] <= '9' {
			hasDot = true
			c.pos++
		} else {
			c.pos = start
			return Literal{}, false
		}
	}

	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch >= '0' && ch <= '9' {
			hasDigits = true
			c.pos++
		} else if ch == '.' && !hasDot && !hasExponent {
			next := byte(0)
			if c.pos+1 < len(c.input) {
				next = c.input[c.pos+1]
			}
			// Treat '.' as decimal point only if followed by a digit or exponent.
			if (next >= '0' && next <= '9') || next == 'e' || next == 'E' {
				hasDot = true
				c.pos++
			} else {
				break
			}
		} else if (ch == 'e' || ch == 'E') && !hasExponent && hasDigits {
			hasExponent = true
			c.pos++
			if c.pos < len(c.input) && (c.input[c.pos] == '+' || c.input[c.pos] == '-') {
				c.pos++
			}
			if c.pos >= len(c.input) || c.input[c.pos] < '0' || c.input[c.pos] > '9' {
				c.pos = start
				return Literal{}, false
			}
		} else {
			break
		}
	}

	if !hasDigits {
		c.pos = start
		return Literal{}, false
	}

	lexical := c.input[start:c.pos]
	if c.pos < len(c.input) && !isTurtleTerminator(c.input[c.pos], c.peekNext()) {
		c.pos = start
		return Literal{}, false
	}
	var datatype IRI
	switch {
	case hasExponent:
		datatype = IRI{Value: XSDDouble}
	case hasDot:
		datatype = IRI{Value: XSDDecimal}
	default:
		datatype = IRI{Value: XSDInteger}
	}
	return Literal{Lexical: lexical, Datatype: datatype}, true
}

func (c *turtleCursor) tryParseBooleanLiteral() (Literal, bool) {
	for _, word := range []string{"true", "false"} {
		end := c.pos + len(word)
		if strings.HasPrefix(c.input[c.pos:], word) && (end >= len(c.input) || isTermDelimiter(c.input[end])) {
			c.pos = end
			return Literal{Lexical: word, Datatype: IRI{Value: XSDBoolean}}, true
		}
	}
	return Literal{}, false
}

func (c *turtleCursor) parsePrefixedName() (Term, error) {
	start := c.pos
	for c.pos < len(c.input) {
		if c.pos > start && c.input[c.pos-1] == '\\' {
			c.pos++
			continue
		}
		if isTurtleTerminator(c.input[c.pos], c.peekNext()) {
			break
		}
		c.pos++
	}
	token := c.input[start:c.pos]
	if token == "" {
		return nil, c.errorf("expected term")
	}
	prefix, local, ok := strings.Cut(token, ":")
	if !ok {
		return nil, c.errorf("invalid token %q", token)
	}
	base, known := c.state.prefixes[prefix]
	if !known {
		return nil, c.fail(fmt.Errorf("%w %q", ErrUnknownPrefix, prefix))
	}
	if local == "" {
		return IRI{Value: base}, nil
	}
	if local[0] == '.' || local[0] == '-' {
		return nil, c.errorf("invalid token %q", token)
	}
	if strings.HasSuffix(local, ".") && (len(local) < 2 || local[len(local)-2] != '\\') {
		return nil, c.errorf("invalid token %q", token)
	}
	var builder strings.Builder
	for i := 0; i < len(local); i++ {
		switch local[i] {
		case '~', '^':
			return nil, c.errorf("invalid token %q", token)
		case '\\':
			if i+1 >= len(local) || !isValidPNLocalEscape(local[i+1]) {
				return nil, c.errorf("invalid token %q", token)
			}
			i++
			builder.WriteByte(local[i])
			continue
		case '%':
			if i+2 >= len(local) || !isHexDigit(local[i+1]) || !isHexDigit(local[i+2]) {
				return nil, c.errorf("invalid token %q", token)
			}
		}
		builder.WriteByte(local[i])
	}
	return IRI{Value: base + builder.String()}, nil
}

func (c *turtleCursor) parseBlankNode() (Term, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == ':' || isTurtleTerminator(ch, c.peekNext()) {
			break
		}
		c.pos++
	}
	if start == c.pos {
		return nil, c.errorf("blank node id missing")
	}
	if c.input[c.pos-1] == '.' {
		return nil, c.errorf("invalid blank node syntax")
	}
	return BlankNode{ID: c.state.blankPrefix + c.input[start:c.pos]}, nil
}

// parseLiteral parses short ("...") and long ("""...""") strings with
// either quote character, then an optional language tag or datatype.
func (c *turtleCursor) parseLiteral(quote byte) (Term, error) {
	long := strings.HasPrefix(c.input[c.pos:], strings.Repeat(string(quote), 3))
	if long {
		c.pos += 3
	} else {
		c.pos++
	}

	var builder strings.Builder
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == quote {
			if !long {
				c.pos++
				closed = true
				break
			}
			if strings.HasPrefix(c.input[c.pos:], strings.Repeat(string(quote), 3)) {
				c.pos += 3
				closed = true
				break
			}
		}
		if !long && (ch == '\n' || ch == '\r') {
			return nil, c.fail(fmt.Errorf("%w: newline in short string", ErrInvalidLiteral))
		}
		if ch == '\\' {
			if err := c.parseEscape(&builder); err != nil {
				return nil, err
			}
			continue
		}
		builder.WriteByte(ch)
		c.pos++
	}
	if !closed {
		return nil, c.fail(fmt.Errorf("%w: unterminated string", ErrInvalidLiteral))
	}

	lexical := builder.String()
	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTurtleTerminator(c.input[c.pos], c.peekNext()) {
			c.pos++
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return nil, c.fail(fmt.Errorf("%w: invalid language tag %q", ErrInvalidLiteral, lang))
		}
		return Literal{Lexical: lexical, Lang: lang}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseTerm(false)
		if err != nil {
			return nil, err
		}
		iri, ok := dt.(IRI)
		if !ok {
			return nil, c.errorf("datatype must be IRI")
		}
		return Literal{Lexical: lexical, Datatype: iri}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *turtleCursor) parseEscape(builder *strings.Builder) error {
	if c.pos+1 >= len(c.input) {
		return c.fail(fmt.Errorf("%w: unterminated escape", ErrInvalidLiteral))
	}
	decoded, advance, err := decodeEscape(c.input, c.pos)
	if err != nil {
		return c.fail(fmt.Errorf("%w: %v", ErrInvalidLiteral, err))
	}
	builder.WriteString(decoded)
	c.pos += advance
	return nil
}

// parseCollection parses a collection (object*) and returns the head blank node.
// It also generates rdf:first/rdf:rest triples and stores them in expansionTriples.
func (c *turtleCursor) parseCollection() (Term, error) {
	if !c.consume('(') {
		return nil, c.errorf("expected '('")
	}

	var objects []Term
	for {
		c.skipWS()
		if c.pos >= len(c.input) {
			return nil, c.errorf("unterminated collection")
		}
		if c.input[c.pos] == ')' {
			c.pos++
			break
		}
		obj, err := c.parseTerm(true)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	c.lastTermBlankNodeList = false

	if len(objects) == 0 {
		return IRI{Value: RDFNil}, nil
	}

	head := c.state.newBlankNode()
	current := head
	for i, obj := range objects {
		c.expansionTriples = append(c.expansionTriples, Triple{S: current, P: IRI{Value: RDFFirst}, O: obj})
		var rest Term = IRI{Value: RDFNil}
		if i < len(objects)-1 {
			next := c.state.newBlankNode()
			rest = next
			c.expansionTriples = append(c.expansionTriples, Triple{S: current, P: IRI{Value: RDFRest}, O: rest})
			current = next
			continue
		}
		c.expansionTriples = append(c.expansionTriples, Triple{S: current, P: IRI{Value: RDFRest}, O: rest})
	}
	return head, nil
}

// parseBlankNodePropertyList parses [predicateObjectList] and returns a blank node.
// It also generates triples from the predicateObjectList and stores them in expansionTriples.
func (c *turtleCursor) parseBlankNodePropertyList() (Term, error) {
	if !c.consume('[') {
		return nil, c.errorf("expected '['")
	}
	bn := c.state.newBlankNode()
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ']' {
		c.pos++
		c.lastTermBlankNodeList = true
		return bn, nil
	}

	for {
		predicate, err := c.parsePredicate()
		if err != nil {
			return nil, err
		}
		for {
			object, err := c.parseTerm(true)
			if err != nil {
				return nil, err
			}
			c.expansionTriples = append(c.expansionTriples, Triple{S: bn, P: predicate, O: object})
			c.skipWS()
			if c.pos < len(c.input) && c.input[c.pos] == ',' {
				c.pos++
				continue
			}
			break
		}

		hadSemicolon := false
		for c.pos < len(c.input) && c.input[c.pos] == ';' {
			hadSemicolon = true
			c.pos++
			c.skipWS()
		}
		if c.pos < len(c.input) && c.input[c.pos] == ']' {
			c.pos++
			c.lastTermBlankNodeList = true
			return bn, nil
		}
		if !hadSemicolon {
			return nil, c.errorf("expected ',' or ';' or ']'")
		}
	}
}

func isTurtleTerminator(ch byte, next byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ';', ',', '(', ')', '[', ']', '}', '<', '>', '"', '\'':
		return true
	case '.':
		// Dot is a terminator only if followed by whitespace or a list/statement delimiter.
		switch next {
		case 0, ' ', '\t', '\r', '\n', ';', ',', ')', ']', '}':
			return true
		}
	}
	return false
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\r', '\n', ';', ',', '.', ')', ']', '<', '[', '(', '"', '\'':
		return true
	}
	return false
}

func (c *turtleCursor) peekNext() byte {
	if c.pos+1 >= len(c.input) {
		return 0
	}
	return c.input[c.pos+1]
}

func (c *turtleCursor) errorf(format string, args ...interface{}) error {
	return c.fail(fmt.Errorf(format, args...))
}

func (c *turtleCursor) fail(err error) error {
	return &syntaxError{pos: c.pos, err: err}
}
