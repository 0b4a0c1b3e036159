// internal/models/casino.go
package models

// CasinoRecord is one row of the prompt store, read-only to the generator.
type CasinoRecord struct {
	Name            string            `json:"name"`
	Tone            string            `json:"tone"`
	Instructions    string            `json:"instructions"`
	ReferencesByKey map[string]string `json:"referencesByKey"`
}

// Reference returns the template stored under key, or "".
func (c *CasinoRecord) Reference(key string) string {
	if c == nil || c.ReferencesByKey == nil {
		return ""
	}
	return c.ReferencesByKey[key]
}

// TemplateChunk is a contiguous slice of a reference template. Day 0 is the
// preamble before the first day marker.
type TemplateChunk struct {
	Index  int    `json:"index"`
	Day    int    `json:"day"`
	Header string `json:"header,omitempty"`
	Text   string `json:"text"`
}

func (c TemplateChunk) IsPreamble() bool {
	return c.Day == 0
}

// GenerationResult is returned to the caller and never persisted.
type GenerationResult struct {
	CopyAll       string   `json:"copyAll"`
	MatchedCasino string   `json:"casino"`
	Mode          string   `json:"mode"`
	ChunkCount    int      `json:"chunkCount"`
	ReferenceKeys []string `json:"referenceKeys"`
}
