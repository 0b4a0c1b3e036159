package templatestore

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName lowercases, strips accents and drops every rune that is not
// a letter or a digit, so "Ginga-Bet", "ginga bet" and "GINGABET" compare
// equal.
func NormalizeName(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidates returns the normalized name plus, when it ends in "bet", the
// name without that suffix.
func Candidates(name string) []string {
	n := NormalizeName(name)
	if n == "" {
		return nil
	}
	out := []string{n}
	if stripped := strings.TrimSuffix(n, "bet"); stripped != n && stripped != "" {
		out = append(out, stripped)
	}
	return out
}

func matches(requested, stored []string) bool {
	for _, r := range requested {
		for _, s := range stored {
			if r == s {
				return true
			}
		}
	}
	return false
}
