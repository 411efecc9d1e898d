package study

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize reduces an answer to the form used for comparison: accents are
// stripped, case is folded, surrounding whitespace is trimmed and interior
// whitespace runs collapse to a single space.
func Normalize(s string) string {
	// Transformers and casers carry state, so build them per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// Matches reports whether submitted equals any accepted answer under Normalize.
func Matches(submitted string, accepted []string) bool {
	want := Normalize(submitted)
	for _, a := range accepted {
		if Normalize(a) == want {
			return true
		}
	}
	return false
}
