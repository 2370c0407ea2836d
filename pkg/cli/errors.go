package cli

import "fmt"

// ConfigError reports an invalid configuration value. Field names the
// offending key in config-file notation (for example "history.path"),
// regardless of whether the value came from the file, a flag, or the
// environment.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// CommandError wraps a failure with the subcommand that produced it. Every
// RunE returns one so Execute can tell command failures apart from cobra
// usage errors.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with the command name.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
