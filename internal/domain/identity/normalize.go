package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer("ß", "ss", "ẞ", "ss", "æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o", "ł", "l", "Ł", "l")

// NormalizeName produces the canonical lookup key for a display name:
// lowercase ASCII-folded letters and digits separated by single spaces.
// Dotted abbreviations are joined, so "F.C." and "FC" share a key.
func NormalizeName(raw string) string {
	s := foldReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var (
		tokens []string
		joined []bool // token continues a dotted abbreviation
		token  strings.Builder
		sep    strings.Builder
	)
	flush := func() {
		if token.Len() == 0 {
			return
		}
		word := token.String()
		glue := len(tokens) > 0 && sep.String() == "." &&
			isSingleLetter(word) && isSingleLetter(tokens[len(tokens)-1])
		tokens = append(tokens, word)
		joined = append(joined, glue)
		token.Reset()
		sep.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			token.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
		sep.WriteRune(r)
	}
	flush()

	var b strings.Builder
	b.Grow(len(s))
	for i, word := range tokens {
		if i > 0 && !joined[i] {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String()
}

func isSingleLetter(s string) bool {
	r := []rune(s)
	return len(r) == 1 && unicode.IsLetter(r[0])
}

// CollapseSpaces trims s and folds every whitespace run (including NBSP)
// into one ASCII space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
