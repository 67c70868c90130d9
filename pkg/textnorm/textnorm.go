// Package textnorm folds free text into the comparable form used by catalog
// search: lower-case, accent-free, single-spaced.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength is the shortest token, in runes, kept by Tokenize.
const DefaultMinTokenLength = 2

// Normalize lower-cases s, strips diacritics, maps the stroked d to a plain d
// and collapses whitespace. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// transform.Chain keeps internal buffers, so a fresh chain is built per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(foldStroked),
	)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize normalizes s and splits it into tokens of at least
// DefaultMinTokenLength runes. Order and duplicates are preserved.
func Tokenize(s string) []string {
	return TokenizeMin(s, DefaultMinTokenLength)
}

// TokenizeMin is Tokenize with an explicit minimum token length.
func TokenizeMin(s string, minLength int) []string {
	fields := strings.Fields(Normalize(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minLength {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func foldStroked(r rune) rune {
	switch r {
	case 'đ', 'Đ':
		return 'd'
	}
	return r
}
