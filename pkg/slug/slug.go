package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Diacritics are
// stripped before non-alphanumeric runs collapse into single hyphens.
//
// Examples:
//   - "Kanchipuram Silk Saree" → "kanchipuram-silk-saree"
//   - "Crème Brûlée" → "creme-brulee"
//   - "cart:9F2A" → "cart-9f2a"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
