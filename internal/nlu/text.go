package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics ("Crédit" -> "credit").
func Fold(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

// Tokens splits folded text on anything that is not a letter or a digit.
// Apostrophes split too: "d'accord" -> ["d", "accord"].
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keyword matches a single token by prefix or a token sequence exactly.
// A keyword written with a leading "=" only matches whole tokens.
type keyword struct {
	parts []string
	exact bool
}

func newKeyword(raw string) keyword {
	exact := strings.HasPrefix(raw, "=")
	return keyword{parts: Tokens(strings.TrimPrefix(raw, "=")), exact: exact}
}

func (k keyword) matches(tokens []string) bool {
	switch len(k.parts) {
	case 0:
		return false
	case 1:
		for _, t := range tokens {
			if t == k.parts[0] || (!k.exact && strings.HasPrefix(t, k.parts[0])) {
				return true
			}
		}
		return false
	}
	for i := 0; i+len(k.parts) <= len(tokens); i++ {
		ok := true
		for j, part := range k.parts {
			if tokens[i+j] != part {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func anyMatch(keywords []keyword, tokens []string) bool {
	for _, k := range keywords {
		if k.matches(tokens) {
			return true
		}
	}
	return false
}
