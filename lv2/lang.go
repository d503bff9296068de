package lv2

import (
	"strings"

	"golang.org/x/text/language"
)

type langMatch int

const (
	langMatchNone langMatch = iota
	langMatchPartial
	langMatchExact
)

// normalizeLang turns a POSIX locale such as "fr_CA.UTF-8@euro" into a
// lowercase BCP 47 tag such as "fr-ca". C and POSIX mean no language.
func normalizeLang(raw string) string {
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	switch raw {
	case "", "C", "POSIX":
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(tag.String())
}

// primarySubtag returns the language part of a tag: "fr" for "fr-ca".
func primarySubtag(tag string) string {
	if t, err := language.Parse(tag); err == nil {
		if base, conf := t.Base(); conf != language.No {
			return base.String()
		}
	}
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

// matchLang compares a literal's language tag with the world language.
func matchLang(literal, world string) langMatch {
	if literal == "" || world == "" {
		return langMatchNone
	}
	literal, world = strings.ToLower(literal), strings.ToLower(world)
	if literal == world {
		return langMatchExact
	}
	if primarySubtag(literal) == primarySubtag(world) {
		return langMatchPartial
	}
	return langMatchNone
}
