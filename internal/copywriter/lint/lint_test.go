package lint

import (
	"testing"

	"betfunnels-copy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinter_Run(t *testing.T) {
	casinos := []models.CasinoRecord{
		{
			Name: "Vera Bet",
			Tone: "",
			ReferencesByKey: map[string]string{
				"ref_ativacao_ftd": "🔹DIA 1\na\n🔹DIA 2\nb",
				"ref_sazonal":      "campanha sem dias",
			},
		},
		{
			Name: "Ginga",
			Tone: "leve",
			ReferencesByKey: map[string]string{
				"ref_ativacao_ftd": "🔹DIA 1\na\n🔹DIA 3\nc",
				"ref_sazonal":      "",
			},
		},
		{Name: "  "},
	}

	report := New([]string{"ref_ativacao_ftd", "ref_sazonal"}, 3).Run(casinos)
	assert.Equal(t, 2, report.Casinos)
	require.Len(t, report.Findings, 4)

	assert.Equal(t, Finding{
		Casino: "Ginga", Key: "ref_ativacao_ftd", Severity: SeverityError,
		Code: "MISSING_DAY_MARKERS", Message: "template lacks day markers", MissingDays: []int{2},
	}, report.Findings[0])
	assert.Equal(t, "EMPTY_REFERENCE", report.Findings[1].Code)
	assert.Equal(t, "ref_sazonal", report.Findings[1].Key)

	assert.Equal(t, "Vera Bet", report.Findings[2].Casino)
	assert.Equal(t, "MISSING_TONE", report.Findings[2].Code)
	assert.Equal(t, []int{3}, report.Findings[3].MissingDays)

	assert.Equal(t, 3, report.Errors())
}

func TestLinter_CleanRecord(t *testing.T) {
	report := New([]string{"ref_ativacao_ftd"}, 2).Run([]models.CasinoRecord{{
		Name:            "Ginga",
		Tone:            "leve",
		ReferencesByKey: map[string]string{"ref_ativacao_ftd": "Intro\n🔸 Dia 1\na\n- DIA 2\nb"},
	}})
	assert.Empty(t, report.Findings)
	assert.Zero(t, report.Errors())
}
