// Package slug turns titles into URL path segments.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no ASCII word characters at all.
const Fallback = "post"

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make decomposes value (NFKD), drops non-ASCII runes and anything that is not
// a word character, space or hyphen, lowercases, and collapses runs of spaces
// and hyphens into a single hyphen.
func Make(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, value)
	if err != nil {
		ascii = value
	}

	cleaned := strings.ToLower(strings.TrimSpace(disallowed.ReplaceAllString(ascii, "")))
	result := strings.Trim(separators.ReplaceAllString(cleaned, "-"), "-")
	if result == "" {
		return Fallback
	}
	return result
}

// WithSuffix returns the n-th candidate for base: base itself for n <= 1,
// then base-2, base-3 and so on.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
