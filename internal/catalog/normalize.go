package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics strips combining marks so accented product names match
// their ASCII spellings.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeQuery canonicalizes a product name for catalog search: lowercase,
// diacritics folded, whitespace collapsed. Keeps search results stable
// across cosmetic spelling differences in cart data.
func NormalizeQuery(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}
