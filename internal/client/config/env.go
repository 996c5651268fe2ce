package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "KEYDESK_"

// parseEnv loads the dotenv file (the one named by -env, else ./.env when it
// exists) without overriding variables already set, then overlays cfg with
// KEYDESK_* variables.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFileFlag(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v, ok := lookup("SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := lookup("CACHE_FILE"); ok {
		cfg.CacheFile = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	var err error
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.HealthCheckInterval, err = envDuration("HEALTH_CHECK_INTERVAL", cfg.HealthCheckInterval); err != nil {
		return err
	}
	if cfg.StepDelay, err = envDuration("STEP_DELAY", cfg.StepDelay); err != nil {
		return err
	}
	if v, ok := lookup("USAGE_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sUSAGE_DAYS: %w", envPrefix, err)
		}
		cfg.UsageDays = n
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookup(name)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	return d, nil
}
