package config

import (
	"fmt"

	"shadowstrike-hq/policylint/pkg/cli"
)

// Validate checks the configuration for invalid values. It is called after
// defaults and environment overrides; CLI flags are validated separately by
// the commands that own them. Failures are *cli.ConfigError values naming
// the offending field.
func Validate(cfg *Config) error {
	switch cfg.Format {
	case "yaml", "json":
	default:
		return cli.NewConfigError("format", fmt.Sprintf("invalid value %q (must be 'yaml' or 'json')", cfg.Format))
	}

	switch cfg.LogLevel {
	case "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL",
		"debug", "info", "warning", "error", "critical":
	default:
		return cli.NewConfigError("log_level", fmt.Sprintf("invalid value %q", cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return cli.NewConfigError("log_format", fmt.Sprintf("invalid value %q (must be 'json' or 'text')", cfg.LogFormat))
	}

	switch cfg.Output {
	case "text", "json":
	default:
		return cli.NewConfigError("output", fmt.Sprintf("invalid value %q (must be 'text' or 'json')", cfg.Output))
	}

	if cfg.History.Record && cfg.History.Path == "" {
		return cli.NewConfigError("history.path", "required when history.record is enabled")
	}

	if cfg.Watch.DebounceInterval <= 0 {
		return cli.NewConfigError("watch.debounce_interval", "must be positive")
	}

	return nil
}
