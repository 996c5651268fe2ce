// Package config loads runtime configuration for the keydesk CLIs.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed KEYDESK_, after loading a dotenv file
//     (-env path, or ./.env when present). Variables already set in the
//     process environment are not overridden by the file.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-i int      health check interval (seconds)
//	-d int      usage window (days)
//	-db string  local credential cache file
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8002",
//	  "request_timeout": "10s",
//	  "health_check_interval": "5s",
//	  "cache_file": "keydesk.db",
//	  "usage_days": 7,
//	  "step_delay": "1s",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	KEYDESK_SERVER_URL, KEYDESK_REQUEST_TIMEOUT, KEYDESK_HEALTH_CHECK_INTERVAL,
//	KEYDESK_CACHE_FILE, KEYDESK_USAGE_DAYS, KEYDESK_STEP_DELAY, KEYDESK_LOG_LEVEL
//
// Durations in the environment use Go syntax ("750ms", "2s").
package config
