package rdf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Turtle and SPARQL-style directive keywords.
const (
	directiveAtPrefix = "@prefix"
	directivePrefix   = "PREFIX"
	directiveAtBase   = "@base"
	directiveBase     = "BASE"
)

var errBadEscape = errors.New("invalid escape sequence")

var simpleEscapes = map[byte]string{
	'n': "\n", 't': "\t", 'r': "\r", 'b': "\b", 'f': "\f",
	'"': "\"", '\'': "'", '\\': "\\",
}

func isHexDigit(ch byte) bool {
	_, ok := hexValue(ch)
	return ok
}

func hexValue(ch byte) (rune, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return rune(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return rune(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return rune(ch-'A') + 10, true
	}
	return 0, false
}

// decodeHex decodes a UCHAR payload of four or eight hex digits, or
// returns -1.
func decodeHex(digits string) rune {
	if len(digits) != 4 && len(digits) != 8 {
		return -1
	}
	var r rune
	for i := 0; i < len(digits); i++ {
		v, ok := hexValue(digits[i])
		if !ok {
			return -1
		}
		r = r<<4 | v
	}
	return r
}

func isSurrogate(r rune) bool { return r >= 0xD800 && r <= 0xDFFF }

// decodeEscape decodes the escape whose backslash is at s[pos]. It returns
// the decoded text and how many bytes of s it consumed. A \u high
// surrogate must be followed by a \u low surrogate.
func decodeEscape(s string, pos int) (string, int, error) {
	if pos+1 >= len(s) {
		return "", 0, errBadEscape
	}
	switch kind := s[pos+1]; kind {
	case 'u', 'U':
		width := 4
		if kind == 'U' {
			width = 8
		}
		end := pos + 2 + width
		if end > len(s) {
			return "", 0, errBadEscape
		}
		r := decodeHex(s[pos+2 : end])
		if r >= 0xD800 && r <= 0xDBFF && kind == 'u' {
			if end+6 > len(s) || s[end] != '\\' || s[end+1] != 'u' {
				return "", 0, errBadEscape
			}
			low := decodeHex(s[end+2 : end+6])
			if low < 0xDC00 || low > 0xDFFF {
				return "", 0, errBadEscape
			}
			r = 0x10000 + (r-0xD800)<<10 + (low - 0xDC00)
			end += 6
		}
		if r < 0 || r > utf8.MaxRune || isSurrogate(r) {
			return "", 0, errBadEscape
		}
		return string(r), end - pos, nil
	default:
		if text, ok := simpleEscapes[kind]; ok {
			return text, 2, nil
		}
		return "", 0, errBadEscape
	}
}

func isValidPNLocalEscape(ch byte) bool {
	return strings.IndexByte("_~.-!$&'()*+,;=/?#@%", ch) >= 0
}

func isASCIILetter(ch byte) bool { return ch|0x20 >= 'a' && ch|0x20 <= 'z' }

func isASCIIDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// isValidLangTag checks the LANGTAG production: letters, then
// hyphen-separated alphanumeric subtags, with an optional --ltr or --rtl
// base direction.
func isValidLangTag(tag string) bool {
	if base, dir, ok := strings.Cut(tag, "--"); ok {
		if dir != "ltr" && dir != "rtl" {
			return false
		}
		tag = base
	}
	for i, sub := range strings.Split(tag, "-") {
		if sub == "" || (i == 0 && len(sub) > 8) {
			return false
		}
		for j := 0; j < len(sub); j++ {
			if !isASCIILetter(sub[j]) && (i == 0 || !isASCIIDigit(sub[j])) {
				return false
			}
		}
	}
	return true
}

// isValidPrefixName checks PN_PREFIX. The empty prefix is valid.
func isValidPrefixName(prefix string) bool {
	if prefix == "" {
		return true
	}
	if first := prefix[0]; !isASCIILetter(first) && first != '_' && first < 0x80 {
		return false
	}
	if prefix[len(prefix)-1] == '.' {
		return false
	}
	for i := 1; i < len(prefix); i++ {
		ch := prefix[i]
		if !isASCIILetter(ch) && !isASCIIDigit(ch) && ch < 0x80 && strings.IndexByte("_-.", ch) < 0 {
			return false
		}
	}
	return true
}

// readLineWithLimit reads one line including its newline. A final line
// without a newline is returned with a nil error. Lines longer than
// maxBytes (when positive) are skipped and reported as ErrLineTooLong.
func readLineWithLimit(reader *bufio.Reader, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		line, err := reader.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		return line, err
	}
	var line []byte
	for {
		part, err := reader.ReadSlice('\n')
		line = append(line, part...)
		switch {
		case len(line) > maxBytes:
			for err == bufio.ErrBufferFull {
				_, err = reader.ReadSlice('\n')
			}
			return "", ErrLineTooLong
		case err == bufio.ErrBufferFull:
			continue
		case err == nil, err == io.EOF && len(line) > 0:
			return string(line), nil
		default:
			return "", err
		}
	}
}

// contextReader fails reads once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func checkDecodeContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
