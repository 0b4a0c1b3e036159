// internal/workers/copywriting/generate-copy/config.go
package generatecopy

import (
	"fmt"
	"time"

	"betfunnels-copy/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	DayCount      int
	// ReportTimeout bounds the complete/fail/throw call sent after the job
	// context has ended.
	ReportTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 2,
		Timeout:       10 * time.Minute,
		DayCount:      6,
		ReportTimeout: 30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DayCount <= 0 {
		return fmt.Errorf("day_count must be positive")
	}
	return nil
}

func createConfigFromAppConfig(appCfg *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}
	cfg.Enabled = appCfg.Camunda.Enabled
	if appCfg.Camunda.MaxJobsActive > 0 {
		cfg.MaxJobsActive = appCfg.Camunda.MaxJobsActive
	}
	if appCfg.Camunda.Timeout > 0 {
		cfg.Timeout = config.GetDuration(appCfg.Camunda.Timeout)
	}
	if appCfg.Camunda.RequestTimeout > 0 {
		cfg.ReportTimeout = config.GetDuration(appCfg.Camunda.RequestTimeout)
	}
	if appCfg.Generation.DayCount > 0 {
		cfg.DayCount = appCfg.Generation.DayCount
	}
	return cfg
}
