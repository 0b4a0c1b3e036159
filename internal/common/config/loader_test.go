package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: db
    database: betfunnels
    user: copy
  redis:
    address: redis:6379
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, ModePerChunk, cfg.Generation.Mode)
	assert.Equal(t, 6, cfg.Generation.DayCount)
	assert.Equal(t, 12, cfg.Generation.SearchLimit)
	assert.Equal(t, 90*time.Second, GetDuration(cfg.Generation.ModelTimeout))
	assert.Equal(t, DefaultReferenceKeys, cfg.Reference.Keys)
	assert.Equal(t, "ref_reativacao_sem_deposito", cfg.Reference.Rules["reactivation:fallback"])
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 5, cfg.Auth.MaxAttempts)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_APP_PASSWORD", "segredo")
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
auth:
  app_password: ${TEST_APP_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "segredo", cfg.Auth.AppPassword)
}

func TestLoadFromFile_UnsetEnvFallsBack(t *testing.T) {
	t.Setenv("BETFUNNELS_APP_PASSWORD", "da-env")
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
auth:
  app_password: ${TEST_UNSET_PASSWORD_VAR}
telemetry:
  otlp_endpoint: ${TEST_UNSET_OTLP_VAR}
`))
	require.NoError(t, err)
	assert.Equal(t, "da-env", cfg.Auth.AppPassword)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name: "unknown mode",
			extra: `
generation:
  mode: streaming
`,
			wantErr: "generation.mode",
		},
		{
			name: "rule points at unknown key",
			extra: `
reference:
  rules:
    "seasonal:fallback": ref_natal
`,
			wantErr: "unknown key",
		},
		{
			name: "invalid key identifier",
			extra: `
reference:
  keys:
    - "ref_x; drop table"
`,
			wantErr: "invalid key",
		},
		{
			name: "camunda enabled without broker",
			extra: `
camunda:
  enabled: true
  broker_address: ""
`,
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, minimalConfig+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingPostgresHost(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, `
database:
  redis:
    address: redis:6379
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.host")
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"ref_a", "ref_b"}, SplitKeys(" ref_a, ,ref_b "))
	assert.Nil(t, SplitKeys(""))
}
