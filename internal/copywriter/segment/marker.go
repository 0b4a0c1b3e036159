// internal/copywriter/segment/marker.go
package segment

import (
	"strconv"
	"strings"
)

// A day marker is one line of the form
//
//	marker := ws* [glyph ws*] "DIA" ws* digit+ rest
//	glyph  := 🔹 | 🔸 | 🔶 | 🔷 | • | ▪ | ► | - | *    (optionally followed by U+FE0F)
//
// where ws is a space or a tab and "DIA" matches in any case. Markers are
// only recognized at the start of the text or right after a newline.
var glyphs = []string{"🔹", "🔸", "🔶", "🔷", "•", "▪", "►", "-", "*"}

const variationSelector = "\uFE0F"

// ParseMarker reports whether line starts with a day marker and returns the
// day number. Days below 1 are not markers.
func ParseMarker(line string) (int, bool) {
	s := trimWS(line)
	for _, g := range glyphs {
		if strings.HasPrefix(s, g) {
			s = strings.TrimPrefix(s[len(g):], variationSelector)
			s = trimWS(s)
			break
		}
	}

	if len(s) < 3 || !strings.EqualFold(s[:3], "dia") {
		return 0, false
	}
	s = trimWS(s[3:])

	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, false
	}
	day, err := strconv.Atoi(s[:n])
	if err != nil || day < 1 {
		return 0, false
	}
	return day, true
}

func trimWS(s string) string {
	return strings.TrimLeft(s, " \t")
}

// marker is a recognized marker line inside a text.
type marker struct {
	offset int
	day    int
	header string
}

func findMarkers(text string) []marker {
	var out []marker
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		line := text[start:]
		if end >= 0 {
			line = text[start : start+end]
		}
		if day, ok := ParseMarker(line); ok {
			out = append(out, marker{
				offset: start,
				day:    day,
				header: strings.TrimRight(line, "\r"),
			})
		}
		if end < 0 {
			break
		}
		start += end + 1
	}
	return out
}
