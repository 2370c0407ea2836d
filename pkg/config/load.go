package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path. It applies
// default values, environment variable overrides, and validates the result.
// An empty path yields the defaults (plus env overrides) without touching the
// filesystem.
//
// The loading sequence is:
//  1. Load YAML from file (if a path is given)
//  2. Apply default values
//  3. Apply POLICYLINT_* environment variable overrides
//  4. Validate the final configuration
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format POLICYLINT_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("POLICYLINT_FORMAT"); val != "" {
		cfg.Format = val
	}
	if val := os.Getenv("POLICYLINT_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("POLICYLINT_LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}
	if val := os.Getenv("POLICYLINT_OUTPUT"); val != "" {
		cfg.Output = val
	}
	if val := os.Getenv("POLICYLINT_HISTORY_RECORD"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Record = b
		}
	}
	if val := os.Getenv("POLICYLINT_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("POLICYLINT_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.DebounceInterval = d
		}
	}
	if val := os.Getenv("POLICYLINT_WATCH_SCHEDULE"); val != "" {
		cfg.Watch.Schedule = val
	}
	if val := os.Getenv("POLICYLINT_METRICS_ADDR"); val != "" {
		cfg.Watch.MetricsAddr = val
	}
}
