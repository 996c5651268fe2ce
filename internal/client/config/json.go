package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/keydesk/internal/flagx"
	"github.com/dmitrijs2005/keydesk/internal/timex"
)

// jsonConfig mirrors the config file. Pointer fields distinguish "absent"
// from a zero value so a partial file only overrides what it names.
type jsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	CacheFile           *string         `json:"cache_file"`
	UsageDays           *int            `json:"usage_days"`
	StepDelay           *timex.Duration `json:"step_delay"`
	LogLevel            *string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.HealthCheckInterval != nil {
		cfg.HealthCheckInterval = jc.HealthCheckInterval.Duration
	}
	if jc.CacheFile != nil {
		cfg.CacheFile = *jc.CacheFile
	}
	if jc.UsageDays != nil {
		cfg.UsageDays = *jc.UsageDays
	}
	if jc.StepDelay != nil {
		cfg.StepDelay = jc.StepDelay.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
