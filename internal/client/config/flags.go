package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags listed here
// are considered; the rest of args is left to other parsers.
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-i int      health check interval (seconds)
//	-d int      usage window (days)
//	-db string  local cache file
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-i", "-d", "-db", "-l"})

	fs := flag.NewFlagSet("keydesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base url")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.HealthCheckInterval.Seconds()), "health check interval (in seconds)")
	fs.IntVar(&cfg.UsageDays, "d", cfg.UsageDays, "usage window in days")
	fs.StringVar(&cfg.CacheFile, "db", cfg.CacheFile, "local cache file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	if seen["t"] {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if seen["i"] {
		cfg.HealthCheckInterval = time.Duration(*interval) * time.Second
	}
	return nil
}
