// internal/copywriter/generation/postprocess.go
package generation

import (
	"regexp"
	"strings"
)

var (
	// Commentary the model sometimes adds around the copy, e.g.
	// "**Diagnóstico:** ..." or "### Copy final:".
	metaLine = regexp.MustCompile(`(?i)^[\s>#*\-•_]*(diagn[oó]stico|diagnosis|copy final|final copy|an[aá]lise|analysis|revis[aã]o|review)[\s*_]*:`)

	extraBlankLines = regexp.MustCompile(`\n(?:[ \t]*\n){3,}`)
)

// Clean strips meta-commentary lines and code fences, collapses runs of
// three or more blank lines to one and trims the result.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if metaLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	text = strings.Join(kept, "\n")
	text = extraBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
