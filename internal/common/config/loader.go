// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModePerChunk   = "per_chunk"
	ModeSinglePass = "single_pass"
)

var referenceKeyPattern = regexp.MustCompile(`^ref_[a-z0-9_]+$`)

// DefaultReferenceKeys is the reference-key taxonomy stored per casino.
var DefaultReferenceKeys = []string{
	"ref_ativacao_ftd",
	"ref_ativacao_std",
	"ref_reativacao_sem_ftd",
	"ref_reativacao_sem_deposito",
	"ref_reativacao_sem_login",
	"ref_sazonal",
}

// DefaultReferenceRules is the routing table used when the config file has none.
var DefaultReferenceRules = map[string]string{
	"activation_ftd:fallback":      "ref_ativacao_ftd",
	"activation_std_plus:fallback": "ref_ativacao_std",
	"reactivation:sem_ftd":         "ref_reativacao_sem_ftd",
	"reactivation:sem_deposito":    "ref_reativacao_sem_deposito",
	"reactivation:sem_login":       "ref_reativacao_sem_login",
	"reactivation:fallback":        "ref_reativacao_sem_deposito",
	"seasonal:fallback":            "ref_sazonal",
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// APP_PASSWORD style overrides: auth.app_password -> AUTH_APP_PASSWORD
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// An unset variable expands to "" so the env fallbacks still apply.
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// The secrets keep the names the edge functions used.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Auth.AppPassword == "" {
		if val := os.Getenv("BETFUNNELS_APP_PASSWORD"); val != "" {
			cfg.Auth.AppPassword = val
		}
	}
	if cfg.GenAI.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.GenAI.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "betfunnels-copy"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Per-chunk generation makes up to seven sequential model calls.
		cfg.Server.WriteTimeout = 600000
	}

	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowHeaders) == 0 {
		cfg.CORS.AllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", "x-app-password"}
	}

	if cfg.Auth.MaxAttempts == 0 {
		cfg.Auth.MaxAttempts = 5
	}
	if cfg.Auth.AttemptWindow == 0 {
		cfg.Auth.AttemptWindow = 900000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gemini-2.0-flash"
	}
	if cfg.GenAI.Temperature == 0 {
		cfg.GenAI.Temperature = 0.7
	}
	if cfg.GenAI.TopP == 0 {
		cfg.GenAI.TopP = 0.95
	}
	if cfg.GenAI.MaxOutputTokens == 0 {
		cfg.GenAI.MaxOutputTokens = 8192
	}
	if cfg.GenAI.ReviewTemp == 0 {
		cfg.GenAI.ReviewTemp = 0.2
	}
	if cfg.GenAI.RequestTimeout == 0 {
		cfg.GenAI.RequestTimeout = 120000
	}

	if cfg.Generation.Mode == "" {
		cfg.Generation.Mode = ModePerChunk
	}
	if cfg.Generation.DayCount == 0 {
		cfg.Generation.DayCount = 6
	}
	if cfg.Generation.ModelTimeout == 0 {
		cfg.Generation.ModelTimeout = 90000
	}
	if cfg.Generation.SearchLimit == 0 {
		cfg.Generation.SearchLimit = 12
	}

	if len(cfg.Reference.Keys) == 0 {
		cfg.Reference.Keys = append([]string(nil), DefaultReferenceKeys...)
	}
	if len(cfg.Reference.Rules) == 0 {
		cfg.Reference.Rules = make(map[string]string, len(DefaultReferenceRules))
		for k, v := range DefaultReferenceRules {
			cfg.Reference.Rules[k] = v
		}
	}
	if cfg.Reference.Default == "" {
		cfg.Reference.Default = "ref_ativacao_ftd"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 2
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 600000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.SampleRatio == 0 {
		cfg.Telemetry.SampleRatio = 0.1
	}
}

// validateConfig validates critical configuration fields. Missing secrets
// (app password, model key) are not fatal at startup: requests fail with a
// configuration error instead, like the edge functions did.
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	switch cfg.Generation.Mode {
	case ModePerChunk, ModeSinglePass:
	default:
		return fmt.Errorf("generation.mode must be %q or %q, got %q", ModePerChunk, ModeSinglePass, cfg.Generation.Mode)
	}
	if cfg.Generation.DayCount < 1 {
		return fmt.Errorf("generation.day_count must be positive")
	}

	known := make(map[string]bool, len(cfg.Reference.Keys))
	for _, key := range cfg.Reference.Keys {
		if !referenceKeyPattern.MatchString(key) {
			return fmt.Errorf("reference.keys: invalid key %q", key)
		}
		known[key] = true
	}
	for rule, keys := range cfg.Reference.Rules {
		for _, key := range SplitKeys(keys) {
			if !known[key] {
				return fmt.Errorf("reference.rules[%s]: unknown key %q", rule, key)
			}
		}
	}
	for _, key := range SplitKeys(cfg.Reference.Default) {
		if !known[key] {
			return fmt.Errorf("reference.default: unknown key %q", key)
		}
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda.enabled")
	}

	return nil
}

// SplitKeys parses a comma-separated key list, dropping blanks.
func SplitKeys(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
