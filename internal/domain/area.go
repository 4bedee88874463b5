package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeArea turns an area name into the slug used for storage paths and
// collection names: trimmed, lower-cased, accents stripped via NFKD
// decomposition, spaces replaced with underscores. An empty or all-symbol
// name normalizes to "".
func NormalizeArea(area string) string {
	a := strings.ToLower(strings.TrimSpace(area))
	a = norm.NFKD.String(a)

	var b strings.Builder
	b.Grow(len(a))
	for _, r := range a {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), " ", "_")
}
