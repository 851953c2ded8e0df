package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// arabicFold unifies letter variants that users type interchangeably.
// Hamza-carrying alefs are already reduced to bare alef by NFKD plus mark
// removal.
func arabicFold(r rune) rune {
	switch r {
	case 'ة':
		return 'ه'
	case 'ى':
		return 'ي'
	}
	return r
}

func newNormalizer() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.Is(unicode.Mn, r) || r == tatweel
		})),
		runes.Map(arabicFold),
		norm.NFC,
		cases.Fold(),
	)
}

// Normalize folds case, strips diacritics and unifies Arabic letter variants.
func Normalize(s string) string {
	out, _, err := transform.String(newNormalizer(), s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize normalizes s and splits it on every rune that is not a letter or
// a digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// prefixes returns every rune prefix of token, shortest first.
func prefixes(token string) []string {
	out := make([]string, 0, len(token))
	for i := range token {
		if i > 0 {
			out = append(out, token[:i])
		}
	}
	return append(out, token)
}
