// internal/models/funnel.go
package models

import "strings"

type FunnelType string

const (
	FunnelActivationFTD     FunnelType = "Ativação FTD"
	FunnelActivationSTDPlus FunnelType = "Ativação STD / TTD / 4TD+"
	FunnelReactivation      FunnelType = "Reativação"
	FunnelSeasonal          FunnelType = "Sazonal"
)

// FunnelTypes lists the wire labels in form order.
var FunnelTypes = []FunnelType{
	FunnelActivationFTD,
	FunnelActivationSTDPlus,
	FunnelReactivation,
	FunnelSeasonal,
}

// Key is the identifier used in reference routing rules.
func (f FunnelType) Key() string {
	switch f {
	case FunnelActivationFTD:
		return "activation_ftd"
	case FunnelActivationSTDPlus:
		return "activation_std_plus"
	case FunnelReactivation:
		return "reactivation"
	case FunnelSeasonal:
		return "seasonal"
	default:
		return ""
	}
}

func (f FunnelType) Valid() bool {
	return f.Key() != ""
}

const (
	RuleNoFTD     = "Sem FTD"
	RuleNoDeposit = "Sem Depósito"
	RuleNoLogin   = "Sem Login"
)

type DayMode string

const (
	DayModeDepositPlay DayMode = "A"
	DayModeFreeText    DayMode = "B"
)

const MaxButtons = 5

type Button struct {
	Text string `json:"text"`
}

type DayInput struct {
	Mode        DayMode  `json:"mode"`
	GameName    string   `json:"gameName,omitempty"`
	ButtonCount int      `json:"buttonCount,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
	FreeMessage string   `json:"freeMessage,omitempty"`
}

// ButtonTexts returns the trimmed, non-empty button texts in order. When
// ButtonCount is set only the first ButtonCount slots are considered.
func (d DayInput) ButtonTexts() []string {
	buttons := d.Buttons
	if d.ButtonCount > 0 && d.ButtonCount < len(buttons) {
		buttons = buttons[:d.ButtonCount]
	}
	var out []string
	for _, b := range buttons {
		if t := strings.TrimSpace(b.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (d DayInput) IsActive() bool {
	return strings.TrimSpace(d.GameName) != "" ||
		strings.TrimSpace(d.FreeMessage) != "" ||
		len(d.ButtonTexts()) > 0
}

type SeasonalInput struct {
	GameName              string `json:"gameName,omitempty"`
	OfferDescription      string `json:"offerDescription,omitempty"`
	IncludeUpsellDownsell bool   `json:"includeUpsellDownsell"`
	Upsell                string `json:"upsell,omitempty"`
	Downsell              string `json:"downsell,omitempty"`
}

// FunnelSpec is the operator request. The JSON shape is the one the form
// posts.
type FunnelSpec struct {
	Casino           string         `json:"casino"`
	FunnelType       FunnelType     `json:"funnelType"`
	Tier             string         `json:"tier,omitempty"`
	ReactivationRule string         `json:"reativacaoRegua,omitempty"`
	Days             []DayInput     `json:"days,omitempty"`
	Seasonal         *SeasonalInput `json:"sazonal,omitempty"`
}

func (s *FunnelSpec) IsSeasonal() bool {
	return s.FunnelType == FunnelSeasonal
}

// SkipsDepositWording is true for funnels addressed to players who never
// deposited, where offers must not ask for a deposit.
func (s *FunnelSpec) SkipsDepositWording() bool {
	return s.FunnelType == FunnelActivationFTD ||
		(s.FunnelType == FunnelReactivation && NormalizeRule(s.ReactivationRule) == RuleIDNoFTD)
}

// Normalize trims the identifying fields and pads Days with empty slots up
// to dayCount. Extra days are left in place for validation to reject.
func (s *FunnelSpec) Normalize(dayCount int) {
	s.Casino = strings.TrimSpace(s.Casino)
	s.Tier = strings.TrimSpace(s.Tier)
	s.ReactivationRule = strings.TrimSpace(s.ReactivationRule)
	s.FunnelType = FunnelType(strings.TrimSpace(string(s.FunnelType)))
	for len(s.Days) < dayCount {
		s.Days = append(s.Days, DayInput{Mode: DayModeDepositPlay})
	}
	if s.Seasonal == nil {
		s.Seasonal = &SeasonalInput{}
	}
}

// ActiveDays returns the 1-based numbers of the days the operator filled.
func (s *FunnelSpec) ActiveDays() []int {
	var out []int
	for i, d := range s.Days {
		if d.IsActive() {
			out = append(out, i+1)
		}
	}
	return out
}
