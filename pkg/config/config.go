package config

import "time"

// Config contains the full configuration for policylint. Every field can be
// set from the optional YAML config file, overridden by POLICYLINT_*
// environment variables, and finally overridden by CLI flags. The config is
// loaded once at startup and passed explicitly to the commands; there is no
// process-wide singleton.
type Config struct {
	// Format is the default policy file format ("yaml" or "json").
	Format string `yaml:"format"`

	// LogLevel is the default log level
	// (DEBUG, INFO, WARNING, ERROR, CRITICAL).
	LogLevel string `yaml:"log_level"`

	// LogFormat is the log output format ("json" or "text").
	LogFormat string `yaml:"log_format"`

	// Output is the result output format ("text" or "json").
	Output string `yaml:"output"`

	// History configures run-history recording.
	History HistoryConfig `yaml:"history"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`
}

// HistoryConfig configures the SQLite run-history store.
type HistoryConfig struct {
	// Record enables appending a record per validation run.
	Record bool `yaml:"record"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// DebounceInterval is the quiet period after a file event before
	// re-validation runs.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Schedule is an optional cron expression for periodic re-validation
	// in addition to file events. Empty disables the scheduler.
	Schedule string `yaml:"schedule"`

	// MetricsAddr is an optional listen address for the Prometheus metrics
	// endpoint. Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = "yaml"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "policylint.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}
	if cfg.Watch.DebounceInterval <= 0 {
		cfg.Watch.DebounceInterval = 100 * time.Millisecond
	}
}
