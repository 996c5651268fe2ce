package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		base     func() *Config
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.1:9090", "-t", "3", "-i", "10", "-d", "30", "-db", "/tmp/k.db", "-l", "debug"},
			expected: &Config{
				ServerURL: "http://10.0.0.1:9090", RequestTimeout: 3 * time.Second, HealthCheckInterval: 10 * time.Second,
				UsageDays: 30, CacheFile: "/tmp/k.db", StepDelay: time.Second, LogLevel: "debug",
			},
		},
		{
			name: "unrelated flags ignored",
			args: []string{"-c", "cfg.json", "-a", "http://h:1", "-verbose"},
			expected: &Config{
				ServerURL: "http://h:1", RequestTimeout: 10 * time.Second, HealthCheckInterval: 5 * time.Second,
				UsageDays: 7, CacheFile: "keydesk.db", StepDelay: time.Second, LogLevel: "info",
			},
		},
		{
			name: "sub-second durations survive when not overridden",
			base: func() *Config {
				c := defaults()
				c.RequestTimeout = 1500 * time.Millisecond
				return c
			},
			expected: func() *Config {
				c := defaults()
				c.RequestTimeout = 1500 * time.Millisecond
				return c
			}(),
		},
		{name: "incorrect interval", args: []string{"-i", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			if tt.base != nil {
				cfg = tt.base()
			}

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
