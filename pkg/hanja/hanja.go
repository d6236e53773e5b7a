// Package hanja splits the origin string of a dictionary entry into
// individually selectable characters.
package hanja

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Split returns one element per user-perceived character of origin.
// Grapheme clusters are kept whole, so ideographs outside the BMP and
// characters followed by variation selectors are never broken apart.
func Split(origin string) []string {
	if origin == "" {
		return nil
	}
	out := make([]string, 0, uniseg.GraphemeClusterCount(origin))
	g := uniseg.NewGraphemes(origin)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// IsHanja reports whether the grapheme starts with a Han ideograph.
func IsHanja(grapheme string) bool {
	r, size := utf8.DecodeRuneInString(grapheme)
	if size == 0 {
		return false
	}
	return unicode.Is(unicode.Han, r)
}
