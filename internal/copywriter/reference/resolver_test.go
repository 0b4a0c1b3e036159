package reference

import (
	"testing"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/models"

	"github.com/stretchr/testify/assert"
)

func defaultResolver() *Resolver {
	return NewResolver(config.ReferenceConfig{
		Keys:    config.DefaultReferenceKeys,
		Rules:   config.DefaultReferenceRules,
		Default: "ref_ativacao_ftd",
	})
}

func TestResolve_DefaultTable(t *testing.T) {
	r := defaultResolver()

	tests := []struct {
		funnel models.FunnelType
		rule   string
		want   []string
	}{
		{models.FunnelActivationFTD, "", []string{"ref_ativacao_ftd"}},
		{models.FunnelActivationFTD, "Sem Login", []string{"ref_ativacao_ftd"}},
		{models.FunnelActivationSTDPlus, "", []string{"ref_ativacao_std"}},
		{models.FunnelReactivation, "Sem FTD", []string{"ref_reativacao_sem_ftd"}},
		{models.FunnelReactivation, "Sem Depósito", []string{"ref_reativacao_sem_deposito"}},
		{models.FunnelReactivation, "sem deposito", []string{"ref_reativacao_sem_deposito"}},
		{models.FunnelReactivation, "Sem Login", []string{"ref_reativacao_sem_login"}},
		{models.FunnelReactivation, "Sem Aposta", []string{"ref_reativacao_sem_deposito"}},
		{models.FunnelReactivation, "", []string{"ref_reativacao_sem_deposito"}},
		{models.FunnelSeasonal, "Sem Login", []string{"ref_sazonal"}},
		{models.FunnelType("Retenção"), "", []string{"ref_ativacao_ftd"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.funnel)+"/"+tt.rule, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.funnel, tt.rule))
		})
	}
}

func TestResolve_AlwaysNonEmpty(t *testing.T) {
	r := NewResolver(config.ReferenceConfig{})
	rules := []string{"", "Sem FTD", "Sem Depósito", "Sem Login", "???", "   "}

	for _, ft := range append(models.FunnelTypes, "unknown") {
		for _, rule := range rules {
			keys := r.Resolve(ft, rule)
			assert.NotEmpty(t, keys, "%s/%s", ft, rule)
			if ft == models.FunnelSeasonal {
				assert.Equal(t, []string{SeasonalKey}, keys)
			}
		}
	}
}

func TestResolve_MultipleKeysKeepOrder(t *testing.T) {
	r := NewResolver(config.ReferenceConfig{
		Rules: map[string]string{
			"reactivation:sem_login": "ref_reativacao_sem_login, ref_reativacao_sem_deposito",
		},
		Default: "ref_ativacao_ftd",
	})

	assert.Equal(t,
		[]string{"ref_reativacao_sem_login", "ref_reativacao_sem_deposito"},
		r.Resolve(models.FunnelReactivation, "Sem Login"))
}

func TestResolve_ReturnsCopy(t *testing.T) {
	r := defaultResolver()
	keys := r.Resolve(models.FunnelActivationFTD, "")
	keys[0] = "mutated"

	assert.Equal(t, []string{"ref_ativacao_ftd"}, r.Resolve(models.FunnelActivationFTD, ""))
}
