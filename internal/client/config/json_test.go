package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_url":            "https://keys.example.com",
		"request_timeout":       "30s",
		"health_check_interval": 2_000_000_000,
		"usage_days":            90,
	})

	t.Run("overlays named fields", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJSON(cfg, []string{"-config", full}))

		assert.Equal(t, "https://keys.example.com", cfg.ServerURL)
		assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 2*time.Second, cfg.HealthCheckInterval)
		assert.Equal(t, 90, cfg.UsageDays)
		// absent fields keep their previous values
		assert.Equal(t, "keydesk.db", cfg.CacheFile)
		assert.Equal(t, time.Second, cfg.StepDelay)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://defaults:1234", UsageDays: 3}
		require.NoError(t, parseJSON(cfg, []string{"-a", "x"}))

		assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
		assert.Equal(t, 3, cfg.UsageDays)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJSON(&Config{}, []string{"-c", bad})
		require.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid duration", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"step_delay": "later"})
		require.Error(t, parseJSON(&Config{}, []string{"-c", bad}))
	})
}
