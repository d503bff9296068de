package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateIRI performs a structural check of an IRI: a well-formed scheme
// when one is present and no raw angle brackets or control characters.
// Failures wrap ErrInvalidIRI.
func ValidateIRI(iri string) error {
	if err := validateIRI(iri); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}
	return nil
}

func validateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("empty IRI")
	}
	parsed, err := url.Parse(iri)
	if err != nil {
		return err
	}
	switch {
	case parsed.Scheme != "":
		if !isASCIILetter(parsed.Scheme[0]) {
			return fmt.Errorf("scheme of %s must start with a letter", iri)
		}
	case strings.HasPrefix(iri, "//"):
		return fmt.Errorf("network-path reference %s has no scheme", iri)
	case !strings.HasPrefix(iri, "/") && !strings.HasPrefix(iri, "."):
		// A colon before any slash would have to end a scheme.
		if scheme, _, ok := strings.Cut(iri, ":"); ok && !strings.Contains(scheme, "/") && !isSchemeName(scheme) {
			return fmt.Errorf("%s has a malformed scheme", iri)
		}
	}
	for i, r := range iri {
		switch {
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			return fmt.Errorf("control character at %d in %s", i, iri)
		case r == '<' || r == '>':
			return fmt.Errorf("raw %q at %d in %s", r, i, iri)
		}
	}
	return nil
}

func isSchemeName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if ch := s[i]; !isASCIILetter(ch) && !isASCIIDigit(ch) && strings.IndexByte("+-.", ch) < 0 {
			return false
		}
	}
	return true
}
