// Package normalize provides the text cleanup applied to event fields before
// they are compared or stored.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Leading English article on a title, capitalised as titles are.
	leadingArticle = regexp.MustCompile(`^(The|An|A)\s+`)
	// Spaced colon, as in "Quest : Part One".
	spacedColon = regexp.MustCompile(`\s+:\s+`)
)

// Collapse trims s and reduces every run of whitespace to a single space.
//
//	"  Grand   Quest " -> "Grand Quest".
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Sanitize cleans a display field: whitespace is collapsed and spaced colons
// are tightened.
//
//	"Quest  :  Part One" -> "Quest: Part One".
func Sanitize(s string) string {
	return spacedColon.ReplaceAllString(Collapse(s), ": ")
}

// StripLeadingArticle removes a leading "The", "An" or "A" from a title.
// The article must be followed by whitespace, so "Anathema" is untouched.
func StripLeadingArticle(s string) string {
	return leadingArticle.ReplaceAllString(strings.TrimSpace(s), "")
}

// Title sanitizes a title and drops its leading article.
//
//	"The Great  Game" -> "Great Game".
func Title(s string) string {
	return Sanitize(StripLeadingArticle(s))
}

// ComparisonForm derives the key used to compare two spellings of a name.
// Accents are decomposed and dropped, everything except ASCII letters and
// digits is removed, and the result is lower-cased.
//
//	"Acme Guild, Inc."   -> "acmeguildinc".
//	"Pokémon: TCG"       -> "pokemontcg".
func ComparisonForm(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > unicode.MaxASCII {
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
