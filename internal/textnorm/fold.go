// Package textnorm normalises user text so accented and unaccented
// Portuguese spellings compare equal ("farmácia" == "farmacia").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold trims, lower-cases and strips combining diacritics.
func Fold(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	// transform.Chain keeps state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

// Words splits s into runs of letters, digits and underscores, the same
// notion of "word" a \w+ regexp uses.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int {
	return len([]rune(s))
}
