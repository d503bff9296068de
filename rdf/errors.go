package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeStatementTooLong indicates a statement exceeded the configured limit.
	ErrCodeStatementTooLong ErrorCode = "STATEMENT_TOO_LONG"
	// ErrCodeUnknownPrefix indicates a prefixed name used an undeclared prefix.
	ErrCodeUnknownPrefix ErrorCode = "UNKNOWN_PREFIX"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeIOError indicates an I/O error.
	ErrCodeIOError ErrorCode = "IO_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
	// ErrCodeInvalidLiteral indicates an invalid literal was encountered.
	ErrCodeInvalidLiteral ErrorCode = "INVALID_LITERAL"
	// ErrCodeSinkAborted indicates the statement sink stopped the read.
	ErrCodeSinkAborted ErrorCode = "SINK_ABORTED"
)

var (
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrStatementTooLong indicates a statement exceeded the configured limit.
	ErrStatementTooLong = errors.New("rdf: statement exceeds configured limit")
	// ErrUnknownPrefix indicates a prefixed name used an undeclared prefix.
	ErrUnknownPrefix = errors.New("rdf: unknown prefix")
	// ErrInvalidIRI indicates a malformed IRI reference.
	ErrInvalidIRI = errors.New("rdf: invalid IRI")
	// ErrInvalidLiteral indicates a malformed literal.
	ErrInvalidLiteral = errors.New("rdf: invalid literal")
	// ErrStop can be returned by a Sink to end a read early without error.
	ErrStop = errors.New("rdf: stop reading")
)

// SinkError wraps an error returned by a Sink callback.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "rdf: sink: " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	// EOF is not an error condition
	if err == io.EOF {
		return ""
	}

	switch {
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrStatementTooLong):
		return ErrCodeStatementTooLong
	case errors.Is(err, ErrUnknownPrefix):
		return ErrCodeUnknownPrefix
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case errors.Is(err, ErrInvalidLiteral):
		return ErrCodeInvalidLiteral
	}

	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return ErrCodeSinkAborted
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeContextCanceled
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrCodeIOError
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		underlyingCode := Code(parseErr.Err)
		if underlyingCode != ErrCodeParseError && underlyingCode != "" {
			return underlyingCode
		}
		return ErrCodeParseError
	}

	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    string // Format name (e.g., "turtle")
	Source    string // Document name or URI, if known
	Statement string // Offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Offset    int    // Byte offset in input (-1 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Source != "" {
		msg.WriteString(" ")
		msg.WriteString(e.Source)
	}

	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	} else if e.Offset >= 0 {
		fmt.Fprintf(&msg, " (offset %d)", e.Offset)
	}

	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())

	if e.Statement != "" {
		excerpt := e.formatExcerpt()
		if excerpt != "" {
			msg.WriteString("\n  ")
			msg.WriteString(excerpt)
		}
	}

	return msg.String()
}

// formatExcerpt formats a readable excerpt of the statement around the error position.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column > 0 {
		start := e.Column - 1
		if start > len(e.Statement) {
			start = len(e.Statement)
		}

		excerptStart := start - contextLen
		if excerptStart < 0 {
			excerptStart = 0
		}
		excerptEnd := start + contextLen
		if excerptEnd > len(e.Statement) {
			excerptEnd = len(e.Statement)
		}

		excerpt := e.Statement[excerptStart:excerptEnd]
		if excerptStart > 0 {
			excerpt = "..." + excerpt
		}
		if excerptEnd < len(e.Statement) {
			excerpt = excerpt + "..."
		}

		caretPos := start - excerptStart
		if excerptStart > 0 {
			caretPos += 3 // "..."
		}
		if caretPos >= len(excerpt) {
			caretPos = len(excerpt) - 1
		}
		if caretPos < 0 {
			caretPos = 0
		}

		var result strings.Builder
		result.WriteString(strings.ReplaceAll(excerpt, "\n", " "))
		result.WriteString("\n  ")
		for i := 0; i < caretPos; i++ {
			result.WriteByte(' ')
		}
		result.WriteByte('^')
		return result.String()
	}

	if len(e.Statement) > maxExcerptLen {
		return e.Statement[:maxExcerptLen] + "..."
	}
	return e.Statement
}

func (e *ParseError) Unwrap() error { return e.Err }

// WrapParseError adds format/statement context to a parse error.
func WrapParseError(format, statement string, offset int, err error) error {
	return wrapParseErrorWithPosition(format, "", statement, 0, 0, offset, err)
}

// wrapParseErrorWithPosition adds format/source/statement/position context to a parse error.
func wrapParseErrorWithPosition(format, source, statement string, line, column, offset int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		// Preserve existing position info if better than what we have
		if parseErr.Line > 0 && line == 0 {
			line = parseErr.Line
		}
		if parseErr.Column > 0 && column == 0 {
			column = parseErr.Column
		}
		if parseErr.Offset >= 0 && offset < 0 {
			offset = parseErr.Offset
		}
		err = parseErr.Err
	}
	return &ParseError{
		Format:    format,
		Source:    source,
		Statement: statement,
		Line:      line,
		Column:    column,
		Offset:    offset,
		Err:       err,
	}
}
