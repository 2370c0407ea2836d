// Package config loads the optional policylint configuration file.
//
// Configuration is resolved in precedence order: CLI flags override
// POLICYLINT_* environment variables, which override the YAML config file,
// which overrides built-in defaults. Load returns the merged file/env/default
// view; flag precedence is applied by the commands.
package config
