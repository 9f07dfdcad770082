// Package normalize canonicalizes user-entered text before it is stored or compared.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxTagLength is the longest tag name accepted, in runes.
const MaxTagLength = 64

// TagName trims surrounding whitespace and converts the name to NFC so that
// visually identical names compare equal. Case is preserved: tag identity is
// an exact match on the normalized form.
func TagName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text converts free text to NFC and strips control characters other than
// newlines and tabs. Leading and trailing whitespace is trimmed.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(strings.TrimSpace(s))
}
