// internal/copywriter/briefing/builder.go
package briefing

import (
	"fmt"
	"strings"

	"betfunnels-copy/internal/models"
)

const (
	labelPlay        = "Jogue e ganhe"
	labelDepositPlay = "Deposite, jogue e ganhe"
	labelOther       = "Outro tipo de oferta"

	emptyDayText = "(dia sem oferta informada)"
)

// DayBlock is the briefing for one day slot. Text is empty when the
// operator left the day blank and nothing was carried forward.
type DayBlock struct {
	Day          int    `json:"day"`
	Text         string `json:"text"`
	Active       bool   `json:"active"`
	BorrowedFrom int    `json:"borrowedFrom,omitempty"`
}

type Briefing struct {
	Seasonal     bool       `json:"seasonal"`
	Days         []DayBlock `json:"days,omitempty"`
	SeasonalText string     `json:"seasonalText,omitempty"`
}

// ForDay returns the block for day n (1-based) or an empty block.
func (b *Briefing) ForDay(n int) DayBlock {
	if n >= 1 && n <= len(b.Days) {
		return b.Days[n-1]
	}
	return DayBlock{Day: n}
}

// Render is the whole briefing as one text, used by single-pass prompts and
// for preamble chunks.
func (b *Briefing) Render() string {
	if b.Seasonal {
		return b.SeasonalText
	}
	parts := make([]string, 0, len(b.Days))
	for _, d := range b.Days {
		text := d.Text
		if text == "" {
			text = emptyDayText
		}
		parts = append(parts, fmt.Sprintf("DIA %d\n%s", d.Day, text))
	}
	return strings.Join(parts, "\n\n")
}

// Builder turns operator input into briefing text. It is deterministic: the
// same FunnelSpec always yields the same Briefing.
type Builder struct {
	dayCount     int
	carryForward bool
}

func NewBuilder(dayCount int, carryForward bool) *Builder {
	return &Builder{dayCount: dayCount, carryForward: carryForward}
}

func (b *Builder) Build(spec *models.FunnelSpec) *Briefing {
	if spec.IsSeasonal() {
		return &Briefing{Seasonal: true, SeasonalText: seasonalText(spec.Seasonal)}
	}

	label := labelDepositPlay
	if spec.SkipsDepositWording() {
		label = labelPlay
	}

	out := &Briefing{Days: make([]DayBlock, b.dayCount)}
	lastActive := 0
	for i := 0; i < b.dayCount; i++ {
		block := DayBlock{Day: i + 1}
		if i < len(spec.Days) && spec.Days[i].IsActive() {
			block.Active = true
			block.Text = dayText(spec.Days[i], label)
			lastActive = i + 1
		}
		out.Days[i] = block
	}

	if b.carryForward && lastActive > 0 {
		source := out.Days[lastActive-1].Text
		for i := lastActive; i < b.dayCount; i++ {
			out.Days[i].Text = fmt.Sprintf("Repete a oferta do Dia %d.\n%s", lastActive, source)
			out.Days[i].BorrowedFrom = lastActive
		}
	}

	return out
}

func dayText(d models.DayInput, depositLabel string) string {
	label := depositLabel
	if d.Mode == models.DayModeFreeText {
		label = labelOther
	}

	lines := []string{"Tipo de oferta: " + label}
	if game := strings.TrimSpace(d.GameName); game != "" {
		lines = append(lines, "Jogo: "+game)
	}
	if buttons := d.ButtonTexts(); len(buttons) > 0 {
		lines = append(lines, "Botões: "+strings.Join(buttons, " | "))
	}
	if msg := strings.TrimSpace(d.FreeMessage); msg != "" {
		lines = append(lines, "Mensagem: "+msg)
	}
	return strings.Join(lines, "\n")
}

func seasonalText(s *models.SeasonalInput) string {
	if s == nil {
		return ""
	}
	var lines []string
	if game := strings.TrimSpace(s.GameName); game != "" {
		lines = append(lines, "Jogo: "+game)
	}
	if offer := strings.TrimSpace(s.OfferDescription); offer != "" {
		lines = append(lines, "Oferta: "+offer)
	}
	if s.IncludeUpsellDownsell {
		if up := strings.TrimSpace(s.Upsell); up != "" {
			lines = append(lines, "Upsell: "+up)
		}
		if down := strings.TrimSpace(s.Downsell); down != "" {
			lines = append(lines, "Downsell: "+down)
		}
	}
	return strings.Join(lines, "\n")
}
