package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings shared by the admin and portal CLIs.
//
// Durations are time.Duration; StepDelay of zero disables the pause between
// the portal's email and code steps.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	HealthCheckInterval time.Duration
	CacheFile           string
	UsageDays           int
	StepDelay           time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8002"
	c.RequestTimeout = 10 * time.Second
	c.HealthCheckInterval = 5 * time.Second
	c.CacheFile = "keydesk.db"
	c.UsageDays = 7
	c.StepDelay = time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from os.Args and the environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then the JSON file, then the environment (with an
// optional .env file), then flags from args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ServerURL == "":
		return fmt.Errorf("server url is empty")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.HealthCheckInterval <= 0:
		return fmt.Errorf("health check interval must be positive, got %s", c.HealthCheckInterval)
	case c.UsageDays <= 0:
		return fmt.Errorf("usage days must be positive, got %d", c.UsageDays)
	case c.StepDelay < 0:
		return fmt.Errorf("step delay must not be negative, got %s", c.StepDelay)
	}
	return nil
}
