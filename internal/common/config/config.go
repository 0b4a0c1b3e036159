// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	GenAI      GenAIConfig      `mapstructure:"genai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Reference  ReferenceConfig  `mapstructure:"reference"`
	Camunda    CamundaConfig    `mapstructure:"camunda"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	AllowHeaders []string `mapstructure:"allow_headers"`
}

// AuthConfig holds the shared-password gate settings.
type AuthConfig struct {
	AppPassword   string `mapstructure:"app_password"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	AttemptWindow int    `mapstructure:"attempt_window"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GenAIConfig configures the Gemini model client.
type GenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	BaseURL         string  `mapstructure:"base_url"`
	Temperature     float64 `mapstructure:"temperature"`
	TopP            float64 `mapstructure:"top_p"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	ReviewTemp      float64 `mapstructure:"review_temperature"`
	RequestTimeout  int     `mapstructure:"request_timeout"` // milliseconds
}

// GenerationConfig holds the orchestrator policy.
type GenerationConfig struct {
	Mode             string `mapstructure:"mode"` // per_chunk | single_pass
	DayCount         int    `mapstructure:"day_count"`
	ReviewPass       bool   `mapstructure:"review_pass"`
	CarryForwardDays bool   `mapstructure:"carry_forward_days"`
	ModelTimeout     int    `mapstructure:"model_timeout"` // milliseconds
	SearchLimit      int    `mapstructure:"search_limit"`
}

// ReferenceConfig maps funnel classifications to reference template keys.
// Rule keys are "<funnelType>:<rule>" or "<funnelType>:fallback"; values
// are comma-separated key lists.
type ReferenceConfig struct {
	Keys    []string          `mapstructure:"keys"`
	Rules   map[string]string `mapstructure:"rules"`
	Default string            `mapstructure:"default"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig selects the span exporter: OTLP over HTTP when an
// endpoint is set, pretty-printed stdout otherwise.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}
