package rdf

import (
	"bufio"
	"io"
	"strings"
)

// rawStatement is one complete Turtle statement with comments removed.
type rawStatement struct {
	text   string
	line   int // 1-based line of the first significant byte
	column int // 1-based column of the first significant byte
}

// statementScanner splits a Turtle byte stream into statements.
// Lexical state survives line boundaries, so long strings, IRIs and
// bracketed lists may span any number of lines.
type statementScanner struct {
	reader *bufio.Reader
	opts   DecodeOptions

	line        int
	pending     string
	pendingLine int
	pendingCol  int

	buf       strings.Builder
	started   bool
	startLine int
	startCol  int

	inString bool
	quote    byte
	long     bool
	inIRI    bool
	depth    int
	lastSig  byte
	eof      bool
}

func newStatementScanner(r io.Reader, opts DecodeOptions) *statementScanner {
	return &statementScanner{reader: bufio.NewReader(r), opts: opts}
}

// next returns the next statement, or io.EOF when the input is exhausted.
func (s *statementScanner) next() (rawStatement, error) {
	for {
		chunk, line, col, err := s.nextChunk()
		if err == io.EOF {
			if s.started {
				stmt := s.take()
				return stmt, nil
			}
			return rawStatement{}, io.EOF
		}
		if err != nil {
			return rawStatement{}, err
		}
		if stmt, rest, done := s.consume(chunk, line, col); done {
			if rest != "" {
				s.pending = rest
				s.pendingLine = line
				s.pendingCol = col + len(chunk) - len(rest)
			}
			return stmt, nil
		}
		if s.opts.MaxStatementBytes > 0 && s.buf.Len() > s.opts.MaxStatementBytes {
			return rawStatement{}, ErrStatementTooLong
		}
	}
}

func (s *statementScanner) nextChunk() (string, int, int, error) {
	if s.pending != "" {
		chunk := s.pending
		s.pending = ""
		return chunk, s.pendingLine, s.pendingCol, nil
	}
	if s.eof {
		return "", 0, 0, io.EOF
	}
	chunk, err := readLineWithLimit(s.reader, s.opts.MaxLineBytes)
	if err != nil {
		if err == io.EOF {
			s.eof = true
		}
		return "", 0, 0, err
	}
	s.line++
	return chunk, s.line, 1, nil
}

// consume feeds one chunk to the scanner. When a statement ends inside the
// chunk it returns the statement and the unconsumed remainder.
func (s *statementScanner) consume(chunk string, line, col int) (rawStatement, string, bool) {
	for i := 0; i < len(chunk); i++ {
		ch := chunk[i]

		if s.inString {
			switch {
			case ch == '\\' && i+1 < len(chunk):
				s.buf.WriteByte(ch)
				s.buf.WriteByte(chunk[i+1])
				i++
			case ch == s.quote && s.long:
				if i+2 < len(chunk) && chunk[i+1] == s.quote && chunk[i+2] == s.quote {
					s.buf.WriteString(chunk[i : i+3])
					i += 2
					s.inString = false
					s.lastSig = ch
				} else {
					s.buf.WriteByte(ch)
				}
			case ch == s.quote:
				s.buf.WriteByte(ch)
				s.inString = false
				s.lastSig = ch
			default:
				s.buf.WriteByte(ch)
			}
			continue
		}

		if s.inIRI {
			s.buf.WriteByte(ch)
			if ch == '>' {
				s.inIRI = false
				s.lastSig = ch
				if s.depth == 0 && s.isSPARQLDirective() {
					return s.take(), chunk[i+1:], true
				}
			}
			continue
		}

		if isTurtleSpace(ch) {
			if s.started {
				s.buf.WriteByte(ch)
			}
			continue
		}

		if ch == '#' && s.lastWritten() != '\\' {
			// Comment runs to end of line; keep the newline for line accounting.
			if s.started && strings.HasSuffix(chunk, "\n") {
				s.buf.WriteByte('\n')
			}
			return rawStatement{}, "", false
		}

		if !s.started {
			s.started = true
			s.startLine = line
			s.startCol = col + i
		}

		switch ch {
		case '<':
			s.inIRI = true
		case '"', '\'':
			s.inString = true
			s.quote = ch
			s.long = i+2 < len(chunk) && chunk[i+1] == ch && chunk[i+2] == ch
			if s.long {
				s.buf.WriteString(chunk[i : i+3])
				i += 2
				continue
			}
		case '[', '(':
			s.depth++
		case ']', ')':
			if s.depth > 0 {
				s.depth--
			}
		case '.':
			if s.depth == 0 && s.endsStatement(chunk, i) {
				s.buf.WriteByte(ch)
				return s.take(), chunk[i+1:], true
			}
		}
		s.buf.WriteByte(ch)
		s.lastSig = ch
	}
	return rawStatement{}, "", false
}

// endsStatement reports whether the '.' at chunk[i] terminates a statement
// rather than belonging to a number or a prefixed name.
func (s *statementScanner) endsStatement(chunk string, i int) bool {
	next := byte(0)
	if i+1 < len(chunk) {
		next = chunk[i+1]
	}
	if next == 0 || isTurtleSpace(next) || next == '#' {
		return true
	}
	switch s.lastSig {
	case '>', '"', '\'', ')', ']':
		return true
	}
	return false
}

func (s *statementScanner) isSPARQLDirective() bool {
	text := s.buf.String()
	for _, kw := range []string{directivePrefix, directiveBase} {
		if len(text) > len(kw) && strings.EqualFold(text[:len(kw)], kw) && isTurtleSpace(text[len(kw)]) {
			return true
		}
	}
	return false
}

func (s *statementScanner) lastWritten() byte {
	text := s.buf.String()
	if text == "" {
		return 0
	}
	return text[len(text)-1]
}

func (s *statementScanner) take() rawStatement {
	stmt := rawStatement{
		text:   strings.TrimRight(s.buf.String(), " \t\r\n"),
		line:   s.startLine,
		column: s.startCol,
	}
	s.buf.Reset()
	s.started = false
	s.inString = false
	s.inIRI = false
	s.depth = 0
	s.lastSig = 0
	return stmt
}

func isTurtleSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
