// Package logging builds the structured logger used throughout policylint.
//
// It wraps log/slog: the CLI parses the --log_level flag once, calls New, and
// threads the resulting *slog.Logger through every component. Diagnostics go
// to stderr so they never mix with the result summary on stdout.
package logging
