package screening

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var separators = strings.NewReplacer("/", " ", "-", " ")

// Normalize canonicalizes a raw name: separators become spaces, the result is
// upper-cased, everything except A-Z and whitespace is dropped, and whitespace
// runs collapse to one space. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	// full case mapping, so "ß" becomes "SS" rather than being dropped
	upper := cases.Upper(language.Und).String(separators.Replace(raw))

	var b strings.Builder
	b.Grow(len(upper))
	pendingSpace := false
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokens splits a normalized name on whitespace.
func Tokens(name string) []string {
	return strings.Fields(name)
}
