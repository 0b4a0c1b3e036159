// internal/models/rule.go
package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule identifiers of the reactivation réguas, as produced by NormalizeRule.
const (
	RuleIDNoFTD     = "sem_ftd"
	RuleIDNoDeposit = "sem_deposito"
	RuleIDNoLogin   = "sem_login"
)

// NormalizeRule turns a régua label into a rule identifier:
// "Sem Depósito" -> "sem_deposito".
func NormalizeRule(rule string) string {
	// transform.Chain is stateful; one per call.
	foldAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(foldAccents, rule)
	if err != nil {
		folded = rule
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
