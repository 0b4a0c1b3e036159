// internal/copywriter/lint/lint.go
package lint

import (
	"sort"
	"strings"

	"betfunnels-copy/internal/copywriter/reference"
	"betfunnels-copy/internal/copywriter/segment"
	"betfunnels-copy/internal/models"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem with a casino's prompt record.
type Finding struct {
	Casino      string   `json:"casino"`
	Key         string   `json:"key,omitempty"`
	Severity    Severity `json:"severity"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	MissingDays []int    `json:"missingDays,omitempty"`
}

type Report struct {
	Casinos  int       `json:"casinos"`
	Findings []Finding `json:"findings"`
}

func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Linter flags records that would make generation fail: blank tone, blank
// templates and day-based templates missing a day marker.
type Linter struct {
	keys     []string
	dayCount int
}

func New(keys []string, dayCount int) *Linter {
	return &Linter{keys: keys, dayCount: dayCount}
}

func (l *Linter) Run(casinos []models.CasinoRecord) *Report {
	report := &Report{Findings: []Finding{}}
	for i := range casinos {
		c := &casinos[i]
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		report.Casinos++
		report.Findings = append(report.Findings, l.check(c)...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Casino != b.Casino {
			return a.Casino < b.Casino
		}
		return a.Key < b.Key
	})
	return report
}

func (l *Linter) check(c *models.CasinoRecord) []Finding {
	var out []Finding
	if strings.TrimSpace(c.Tone) == "" {
		out = append(out, Finding{
			Casino:   c.Name,
			Severity: SeverityError,
			Code:     "MISSING_TONE",
			Message:  "tom_de_voz is empty",
		})
	}

	for _, key := range l.keys {
		text := strings.TrimSpace(c.Reference(key))
		if text == "" {
			out = append(out, Finding{
				Casino:   c.Name,
				Key:      key,
				Severity: SeverityWarning,
				Code:     "EMPTY_REFERENCE",
				Message:  "template is empty; funnels routed here will fail",
			})
			continue
		}
		if key == reference.SeasonalKey {
			continue
		}
		if missing := segment.MissingDays(text, l.dayCount); len(missing) > 0 {
			out = append(out, Finding{
				Casino:      c.Name,
				Key:         key,
				Severity:    SeverityError,
				Code:        "MISSING_DAY_MARKERS",
				Message:     "template lacks day markers",
				MissingDays: missing,
			})
		}
	}
	return out
}
