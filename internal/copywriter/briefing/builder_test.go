package briefing

import (
	"testing"

	"betfunnels-copy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ftdSpec() *models.FunnelSpec {
	spec := &models.FunnelSpec{
		Casino:     "Ginga",
		FunnelType: models.FunnelActivationFTD,
		Days: []models.DayInput{
			{
				Mode:        models.DayModeDepositPlay,
				GameName:    "Tigre Sortudo",
				ButtonCount: 3,
				Buttons:     []models.Button{{Text: "Jogue R$20"}, {Text: " Jogue R$50 "}, {}},
			},
			{},
			{Mode: models.DayModeFreeText, FreeMessage: "Cashback de 10% no fim de semana"},
		},
	}
	spec.Normalize(6)
	return spec
}

func TestBuild_PerDayBlocks(t *testing.T) {
	b := NewBuilder(6, false).Build(ftdSpec())

	require.Len(t, b.Days, 6)
	assert.Equal(t,
		"Tipo de oferta: Jogue e ganhe\nJogo: Tigre Sortudo\nBotões: Jogue R$20 | Jogue R$50",
		b.Days[0].Text)
	assert.True(t, b.Days[0].Active)

	assert.Equal(t, "", b.Days[1].Text)
	assert.False(t, b.Days[1].Active)

	assert.Equal(t,
		"Tipo de oferta: Outro tipo de oferta\nMensagem: Cashback de 10% no fim de semana",
		b.Days[2].Text)

	for _, d := range b.Days[3:] {
		assert.Empty(t, d.Text)
		assert.Zero(t, d.BorrowedFrom)
	}
}

func TestBuild_DepositLabelOutsideFTD(t *testing.T) {
	spec := ftdSpec()
	spec.FunnelType = models.FunnelActivationSTDPlus

	b := NewBuilder(6, false).Build(spec)
	assert.Contains(t, b.Days[0].Text, "Tipo de oferta: Deposite, jogue e ganhe")

	spec.FunnelType = models.FunnelReactivation
	spec.ReactivationRule = models.RuleNoFTD
	b = NewBuilder(6, false).Build(spec)
	assert.Contains(t, b.Days[0].Text, "Tipo de oferta: Jogue e ganhe")

	spec.ReactivationRule = "SEM FTD"
	b = NewBuilder(6, false).Build(spec)
	assert.Contains(t, b.Days[0].Text, "Tipo de oferta: Jogue e ganhe")
	assert.NotContains(t, b.Days[0].Text, "Deposite")
}

func TestBuild_Idempotent(t *testing.T) {
	builder := NewBuilder(6, false)
	spec := ftdSpec()

	assert.Equal(t, builder.Build(spec), builder.Build(spec))
	assert.Equal(t, builder.Build(spec).Render(), builder.Build(spec).Render())
}

func TestBuild_CarryForward(t *testing.T) {
	b := NewBuilder(6, true).Build(ftdSpec())

	assert.Empty(t, b.Days[1].Text, "gaps before the last active day stay empty")
	for _, d := range b.Days[3:] {
		assert.Equal(t, 3, d.BorrowedFrom)
		assert.Contains(t, d.Text, "Repete a oferta do Dia 3.")
		assert.Contains(t, d.Text, "Cashback de 10%")
		assert.False(t, d.Active)
	}
}

func TestBuild_Seasonal(t *testing.T) {
	spec := &models.FunnelSpec{
		FunnelType: models.FunnelSeasonal,
		Seasonal: &models.SeasonalInput{
			GameName:              "Natal Premiado",
			OfferDescription:      "50 giros no Natal Premiado",
			IncludeUpsellDownsell: true,
			Upsell:                "100 giros acima de R$100",
		},
	}

	b := NewBuilder(6, false).Build(spec)
	assert.True(t, b.Seasonal)
	assert.Empty(t, b.Days)
	assert.Equal(t,
		"Jogo: Natal Premiado\nOferta: 50 giros no Natal Premiado\nUpsell: 100 giros acima de R$100",
		b.SeasonalText)
	assert.Equal(t, b.SeasonalText, b.Render())

	spec.Seasonal.IncludeUpsellDownsell = false
	assert.NotContains(t, NewBuilder(6, false).Build(spec).SeasonalText, "Upsell")
}

func TestRender_HeadsEachDay(t *testing.T) {
	out := NewBuilder(2, false).Build(ftdSpec()).Render()

	assert.Equal(t,
		"DIA 1\nTipo de oferta: Jogue e ganhe\nJogo: Tigre Sortudo\nBotões: Jogue R$20 | Jogue R$50\n\nDIA 2\n(dia sem oferta informada)",
		out)
}

func TestForDay_OutOfRange(t *testing.T) {
	b := NewBuilder(6, false).Build(ftdSpec())
	assert.Equal(t, DayBlock{Day: 9}, b.ForDay(9))
	assert.Equal(t, 1, b.ForDay(1).Day)
}
