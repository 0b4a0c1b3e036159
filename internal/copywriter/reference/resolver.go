// internal/copywriter/reference/resolver.go
package reference

import (
	"strings"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/models"
)

// SeasonalKey is the only template a seasonal funnel ever uses.
const SeasonalKey = "ref_sazonal"

const fallbackRule = "fallback"

// Resolver maps a funnel classification to the ordered reference keys whose
// templates are concatenated into the structural mold.
type Resolver struct {
	rules       map[string][]string
	defaultKeys []string
}

func NewResolver(cfg config.ReferenceConfig) *Resolver {
	rules := make(map[string][]string, len(cfg.Rules))
	for k, v := range cfg.Rules {
		if keys := config.SplitKeys(v); len(keys) > 0 {
			rules[strings.ToLower(strings.TrimSpace(k))] = keys
		}
	}
	defaultKeys := config.SplitKeys(cfg.Default)
	if len(defaultKeys) == 0 {
		defaultKeys = []string{"ref_ativacao_ftd"}
	}
	return &Resolver{rules: rules, defaultKeys: defaultKeys}
}

// Resolve never fails: an unknown rule falls back to the funnel's fallback
// keys, then to the global default.
func (r *Resolver) Resolve(funnelType models.FunnelType, reactivationRule string) []string {
	if funnelType == models.FunnelSeasonal {
		return []string{SeasonalKey}
	}

	funnelKey := funnelType.Key()
	if funnelKey != "" {
		if rule := models.NormalizeRule(reactivationRule); rule != "" {
			if keys, ok := r.rules[funnelKey+":"+rule]; ok {
				return clone(keys)
			}
		}
		if keys, ok := r.rules[funnelKey+":"+fallbackRule]; ok {
			return clone(keys)
		}
	}
	return clone(r.defaultKeys)
}

func clone(keys []string) []string {
	return append([]string(nil), keys...)
}
