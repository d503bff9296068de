package rdf

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
)

// turtleReader drives a statement scanner and a cursor over one document.
type turtleReader struct {
	scanner *statementScanner
	state   *turtleState
	sink    Sink
	opts    DecodeOptions
}

// ReadTurtle parses a Turtle document from r and reports each directive and
// triple to sink in document order. Relative IRIs resolve against baseIRI,
// which may be empty.
//
// Parse failures are returned as *ParseError carrying the line and column
// of the offending statement. Statements before the failure have already
// been delivered to sink.
func ReadTurtle(r io.Reader, baseIRI string, sink Sink, opts DecodeOptions) error {
	opts = normalizeDecodeOptions(opts)
	if opts.Context != nil {
		r = &contextReader{ctx: opts.Context, r: r}
	}
	reader := &turtleReader{
		scanner: newStatementScanner(r, opts),
		state:   newTurtleState(baseIRI, opts.BlankPrefix),
		sink:    sink,
		opts:    opts,
	}
	err := reader.run()
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// ReadTurtleString parses an in-memory Turtle document.
func ReadTurtleString(doc, baseIRI string, sink Sink, opts DecodeOptions) error {
	return ReadTurtle(strings.NewReader(doc), baseIRI, sink, opts)
}

// ReadTurtleBytes parses an in-memory Turtle document.
func ReadTurtleBytes(doc []byte, baseIRI string, sink Sink, opts DecodeOptions) error {
	return ReadTurtle(bytes.NewReader(doc), baseIRI, sink, opts)
}

// ReadTurtleFile parses the Turtle file at path. An empty baseIRI defaults to
// the file's own URI.
func ReadTurtleFile(path, baseIRI string, sink Sink, opts DecodeOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if baseIRI == "" {
		baseIRI = FileURI(path)
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return ReadTurtle(f, baseIRI, sink, opts)
}

func (r *turtleReader) run() error {
	for {
		if err := checkDecodeContext(r.opts.Context); err != nil {
			return err
		}
		stmt, err := r.scanner.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrLineTooLong) || errors.Is(err, ErrStatementTooLong) {
				return wrapParseErrorWithPosition("turtle", r.opts.Source, "", r.scanner.line, 0, -1, err)
			}
			return err
		}
		if err := r.parse(stmt); err != nil {
			return err
		}
	}
}

func (r *turtleReader) parse(stmt rawStatement) error {
	cursor := newTurtleCursor(r.state, stmt.text, r.opts.DebugStatements)
	triples, err := cursor.parseStatement(r.sink)
	if err != nil {
		return r.wrapParseError(stmt, err)
	}
	for _, t := range triples {
		if err := r.sink.Statement(t); err != nil {
			if errors.Is(err, ErrStop) {
				return err
			}
			return &SinkError{Err: err}
		}
	}
	return nil
}

func (r *turtleReader) wrapParseError(stmt rawStatement, err error) error {
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		if errors.Is(sinkErr.Err, ErrStop) {
			return ErrStop
		}
		return err
	}
	line, column := stmt.line, stmt.column
	var synErr *syntaxError
	if errors.As(err, &synErr) {
		line, column = positionIn(stmt, synErr.pos)
		err = synErr.err
	}
	statement := ""
	if r.opts.DebugStatements {
		statement = stmt.text
	}
	return wrapParseErrorWithPosition("turtle", r.opts.Source, statement, line, column, -1, err)
}

// positionIn maps a byte offset within a statement to a document position.
func positionIn(stmt rawStatement, pos int) (int, int) {
	if pos > len(stmt.text) {
		pos = len(stmt.text)
	}
	before := stmt.text[:pos]
	newlines := strings.Count(before, "\n")
	if newlines == 0 {
		return stmt.line, stmt.column + pos
	}
	return stmt.line + newlines, pos - strings.LastIndexByte(before, '\n')
}
