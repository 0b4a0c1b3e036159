package validation

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/models"
)

// depositWord catches deposite/depositar/depósito-style wording that FTD
// funnels must avoid.
var depositWord = regexp.MustCompile(`(?i)dep[oó]sit`)

const forbiddenHint = `Palavra proibida em FTD/SEM FTD. Tente: "Coloca…", "Começa com…", "Banca…", "Jogue R$…"`

// ValidateSpec runs the semantic checks the schema cannot express. spec must
// already be normalized.
func ValidateSpec(spec *models.FunnelSpec, dayCount int) *ValidationResult {
	res := &ValidationResult{Valid: true}

	if spec.Casino == "" {
		res.add("casino", "REQUIRED", "Informe o nome do cassino.")
	}
	if !spec.FunnelType.Valid() {
		res.add("funnelType", "INVALID_ENUM_VALUE", "Tipo de funil inválido.")
		return res
	}
	if spec.FunnelType == models.FunnelReactivation && spec.ReactivationRule == "" {
		res.add("reativacaoRegua", "REQUIRED", "Selecione a régua de Reativação.")
	}

	if spec.IsSeasonal() {
		validateSeasonal(spec.Seasonal, res)
		return res
	}

	if len(spec.Days) > dayCount {
		res.add("days", "TOO_MANY_DAYS", fmt.Sprintf("O funil tem no máximo %d dias.", dayCount))
		return res
	}
	if len(spec.ActiveDays()) == 0 {
		res.add("days", "NO_ACTIVE_DAY",
			"Preencha pelo menos 1 dia (Deposite, jogue e ganhe / Outro tipo de oferta) antes de gerar.")
	}

	guard := spec.SkipsDepositWording()
	for i, d := range spec.Days {
		field := fmt.Sprintf("days.%d", i)
		if len(d.Buttons) > models.MaxButtons {
			res.add(field+".buttons", "TOO_MANY_BUTTONS", fmt.Sprintf("Dia %d: no máximo %d botões.", i+1, models.MaxButtons))
		}
		if d.IsActive() {
			switch d.Mode {
			case models.DayModeFreeText:
				if strings.TrimSpace(d.FreeMessage) == "" {
					res.add(field+".freeMessage", "REQUIRED",
						fmt.Sprintf("Dia %d: mensagem do dia é obrigatória em 'Outro tipo de oferta'.", i+1))
				}
			default:
				if strings.TrimSpace(d.GameName) == "" {
					res.add(field+".gameName", "REQUIRED",
						fmt.Sprintf("Dia %d: nome do jogo é obrigatório em 'Deposite, jogue e ganhe'.", i+1))
				}
			}
		}
		if !guard {
			continue
		}
		for j, text := range d.ButtonTexts() {
			if depositWord.MatchString(text) {
				res.add(fmt.Sprintf("%s.buttons.%d.text", field, j), "FORBIDDEN_WORD", forbiddenHint)
			}
		}
		if depositWord.MatchString(d.FreeMessage) {
			res.add(field+".freeMessage", "FORBIDDEN_WORD", forbiddenHint)
		}
	}

	return res
}

func validateSeasonal(s *models.SeasonalInput, res *ValidationResult) {
	if s == nil {
		s = &models.SeasonalInput{}
	}
	if strings.TrimSpace(s.GameName) == "" {
		res.add("sazonal.gameName", "REQUIRED", "Nome do jogo é obrigatório na Sazonal.")
	}
	if strings.TrimSpace(s.OfferDescription) == "" {
		res.add("sazonal.offerDescription", "REQUIRED", "Descrição da oferta é obrigatória na Sazonal.")
	}
	if s.IncludeUpsellDownsell && strings.TrimSpace(s.Upsell) == "" && strings.TrimSpace(s.Downsell) == "" {
		res.add("sazonal.includeUpsellDownsell", "REQUIRED", "Se marcar Upsell/Downsell, preencha pelo menos um deles.")
	}
}

// AsError converts a failed result into the error returned to callers.
// Schema failures are bad requests; semantic failures are validation errors.
func (vr *ValidationResult) AsError(schema bool) *apperrors.StandardError {
	if vr == nil || vr.Valid {
		return nil
	}
	details := strings.Join(vr.GetErrorMessages(), "; ")
	var err *apperrors.StandardError
	if schema {
		err = apperrors.NewBadRequestError(details)
	} else {
		err = apperrors.NewValidationError(vr.Errors[0].Message, details)
	}
	return err.With("issues", vr.Errors)
}
