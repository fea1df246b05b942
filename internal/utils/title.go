package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var titleNormalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle folds a display title for matching: diacritics stripped,
// lowercased, surrounding whitespace trimmed
func NormalizeTitle(title string) string {
	folded, _, err := transform.String(titleNormalizer, title)
	if err != nil {
		folded = title
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
