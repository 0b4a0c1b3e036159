// internal/copywriter/segment/segment.go
package segment

import (
	"sort"
	"strings"

	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/models"
)

// ExtractDayNumbers returns the distinct day numbers marked in text,
// ascending.
func ExtractDayNumbers(text string) []int {
	seen := make(map[int]bool)
	var days []int
	for _, m := range findMarkers(text) {
		if !seen[m.day] {
			seen[m.day] = true
			days = append(days, m.day)
		}
	}
	sort.Ints(days)
	return days
}

// Split cuts text at every marker line. Text before the first marker becomes
// a preamble chunk (day 0). Concatenating the chunk texts yields text.
func Split(text string) []models.TemplateChunk {
	if text == "" {
		return nil
	}

	markers := findMarkers(text)
	var chunks []models.TemplateChunk

	first := len(text)
	if len(markers) > 0 {
		first = markers[0].offset
	}
	if first > 0 {
		chunks = append(chunks, models.TemplateChunk{Index: 0, Day: 0, Text: text[:first]})
	}

	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].offset
		}
		chunks = append(chunks, models.TemplateChunk{
			Index:  len(chunks),
			Day:    m.day,
			Header: m.header,
			Text:   text[m.offset:end],
		})
	}
	return chunks
}

// Join concatenates chunk texts in order; Join(Split(text)) == text.
func Join(chunks []models.TemplateChunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

// MissingDays lists the days in 1..expected without a marker in text.
func MissingDays(text string, expected int) []int {
	found := make(map[int]bool)
	for _, d := range ExtractDayNumbers(text) {
		found[d] = true
	}
	var missing []int
	for d := 1; d <= expected; d++ {
		if !found[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// ValidateDays fails when any day in 1..expected has no marker.
func ValidateDays(text string, expected int) error {
	missing := MissingDays(text, expected)
	if len(missing) == 0 {
		return nil
	}
	found := ExtractDayNumbers(text)
	if found == nil {
		found = []int{}
	}
	return errors.NewMissingDayMarkersError(found, missing)
}

// TruncateAfterDay drops everything from the first marker whose day is
// greater than n.
func TruncateAfterDay(text string, n int) string {
	for _, m := range findMarkers(text) {
		if m.day > n {
			return strings.TrimRight(text[:m.offset], " \t\r\n")
		}
	}
	return text
}

// StartsWithDay reports whether the first non-blank line of text is a
// marker for day.
func StartsWithDay(text string, day int) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, ok := ParseMarker(line)
		return ok && d == day
	}
	return false
}
