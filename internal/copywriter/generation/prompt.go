// internal/copywriter/generation/prompt.go
package generation

import (
	"fmt"
	"strings"

	"betfunnels-copy/internal/copywriter/briefing"
	"betfunnels-copy/internal/models"
)

const outputRules = `REGRAS DE SAÍDA:
- Responda somente com a copy final, sem diagnóstico, análise ou comentários.
- Mantenha a estrutura, os canais (e-mail, SMS, push, popup, inbox), a ordem e os marcadores de dia do template.
- Não crie seções, canais ou blocos novos que não existam no template.
- Ofertas, valores e botões de exemplo do template são só referência: use apenas os que o briefing informar e remova os demais.
- Preserve variáveis como {{state.user_first_name}} exatamente como estão.
- Não use blocos de código nem markdown que não exista no template.
- Evite frases genéricas de IA como "Mergulhe em", "Embarque em" ou "Prepare-se para".`

const blankDayInstruction = `O operador não informou oferta para este dia. Reescreva o trecho de forma neutra, no tom do cassino, sem inventar jogo, valor, bônus ou botão.`

// promptContext carries what every prompt of one request shares.
type promptContext struct {
	guide  string
	casino *models.CasinoRecord
	spec   *models.FunnelSpec
	brief  *briefing.Briefing
}

func (pc promptContext) header() []string {
	parts := []string{
		"# GUIA MESTRE\n" + strings.TrimSpace(pc.guide),
		"# CASSINO: " + pc.casino.Name,
		"## TOM DE VOZ\n" + strings.TrimSpace(pc.casino.Tone),
	}
	if instr := strings.TrimSpace(pc.casino.Instructions); instr != "" {
		parts = append(parts, "## INSTRUÇÕES DO CASSINO\n"+instr)
	}

	funnel := []string{"Tipo de funil: " + string(pc.spec.FunnelType)}
	if pc.spec.Tier != "" {
		funnel = append(funnel, "Tier: "+pc.spec.Tier)
	}
	if pc.spec.ReactivationRule != "" {
		funnel = append(funnel, "Régua: "+pc.spec.ReactivationRule)
	}
	if pc.spec.SkipsDepositWording() {
		funnel = append(funnel, "Público sem depósito: não peça depósito nem use a palavra \"depósito\".")
	}
	parts = append(parts, "## FUNIL\n"+strings.Join(funnel, "\n"))
	return parts
}

// chunkPrompt asks for one template slice rewritten with its day briefing.
// The preamble and seasonal templates get the whole briefing.
func chunkPrompt(pc promptContext, chunk models.TemplateChunk) string {
	parts := pc.header()

	switch {
	case pc.brief.Seasonal:
		parts = append(parts, "## BRIEFING DA CAMPANHA SAZONAL\n"+pc.brief.SeasonalText)
	case chunk.IsPreamble():
		parts = append(parts, "## BRIEFING GERAL\n"+pc.brief.Render())
	default:
		block := pc.brief.ForDay(chunk.Day)
		if block.Text == "" {
			parts = append(parts, fmt.Sprintf("## BRIEFING DO DIA %d\n%s", chunk.Day, blankDayInstruction))
		} else {
			parts = append(parts, fmt.Sprintf("## BRIEFING DO DIA %d\n%s", chunk.Day, block.Text))
		}
	}

	parts = append(parts,
		"## TRECHO DO TEMPLATE DE REFERÊNCIA\n"+strings.TrimSpace(chunk.Text),
		outputRules,
	)
	if !chunk.IsPreamble() && chunk.Header != "" {
		parts = append(parts, "Comece a resposta pela linha do marcador: "+chunk.Header)
	}
	return strings.Join(parts, "\n\n")
}

// singlePassPrompt asks for the whole funnel in one answer.
func singlePassPrompt(pc promptContext, template string, dayCount int) string {
	parts := pc.header()
	parts = append(parts,
		"## BRIEFING\n"+pc.brief.Render(),
		"## TEMPLATE DE REFERÊNCIA\n"+strings.TrimSpace(template),
		outputRules,
	)
	if !pc.brief.Seasonal {
		parts = append(parts, fmt.Sprintf(
			"Gere exatamente os dias 1 a %d, cada um começando pelo seu marcador de dia. Dias sem oferta: %s",
			dayCount, blankDayInstruction))
	}
	return strings.Join(parts, "\n\n")
}

// reviewPrompt asks for a strict correction of a draft against the template
// and briefing.
func reviewPrompt(pc promptContext, template, draft string, dayCount int) string {
	parts := pc.header()
	parts = append(parts,
		"## BRIEFING\n"+pc.brief.Render(),
		"## TEMPLATE DE REFERÊNCIA\n"+strings.TrimSpace(template),
		"## RASCUNHO\n"+strings.TrimSpace(draft),
		fmt.Sprintf(`Revise o rascunho com rigor: corrija desvios de estrutura, canais, tom e dados do briefing. `+
			`Mantenha os rótulos e o padrão de emojis do template. `+
			`Não acrescente dias além do dia %d. Devolva apenas a versão corrigida completa.`, dayCount),
		outputRules,
	)
	return strings.Join(parts, "\n\n")
}

// completionPrompt asks only for the days the draft left out.
func completionPrompt(pc promptContext, template string, missing []int) string {
	labels := make([]string, len(missing))
	for i, d := range missing {
		labels[i] = fmt.Sprintf("DIA %d", d)
	}

	var brief []string
	for _, d := range missing {
		block := pc.brief.ForDay(d)
		text := block.Text
		if text == "" {
			text = blankDayInstruction
		}
		brief = append(brief, fmt.Sprintf("DIA %d\n%s", d, text))
	}

	parts := pc.header()
	parts = append(parts,
		"## BRIEFING DOS DIAS FALTANTES\n"+strings.Join(brief, "\n\n"),
		"## TEMPLATE DE REFERÊNCIA\n"+strings.TrimSpace(template),
		"Gere somente estes dias, cada um começando pelo seu marcador: "+strings.Join(labels, ", ")+".",
		outputRules,
	)
	return strings.Join(parts, "\n\n")
}
