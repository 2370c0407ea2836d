package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"shadowstrike-hq/policylint/pkg/cli"
	"shadowstrike-hq/policylint/pkg/config"
)

var (
	// Global flags
	cfgFile   string
	rootFlags struct {
		format   string
		logLevel string
		output   string
		record   bool
		history  string
	}
)

var rootCmd = &cobra.Command{
	Use:   "policylint <policy_file> <schema_file>",
	Short: "Lint security policies against a JSON Schema",
	Long: `Policylint validates a security policy written in YAML or JSON against a
JSON Schema document.

The structural check (type constraints, required properties, enums, pattern
matching, nested object/array rules) is delegated to a JSON Schema engine;
policylint maps the outcome to an exit code, a one-line summary on stdout,
and structured diagnostics on stderr.

Exit codes:
  0  the policy conforms to the schema
  1  any failure (missing file, parse error, shape error, conformance
     failure, unexpected error); the printed message carries the category`,
	Args:          cobra.ExactArgs(2),
	RunE:          runLint,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *cli.CommandError
		if !errors.As(err, &cmdErr) {
			// Usage errors from cobra (bad flags, wrong arg count) reach
			// here without a summary having been printed yet.
			fmt.Println("Invalid input provided. See logs for details.")
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.format, "format", "yaml", "format of the policy file: yaml, json")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log_level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	rootCmd.PersistentFlags().StringVar(&rootFlags.output, "output", "text", "result output format: text, json")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.record, "record", false, "append this run to the history database")
	rootCmd.PersistentFlags().StringVar(&rootFlags.history, "history", "", "history database path")
}

// resolveConfig merges the config file (or defaults) with any flags the user
// set explicitly. Flags take precedence over the file, which takes precedence
// over POLICYLINT_* environment variables and built-in defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = rootFlags.format
	}
	if flags.Changed("log_level") {
		cfg.LogLevel = rootFlags.logLevel
	}
	if flags.Changed("output") {
		cfg.Output = rootFlags.output
	}
	if flags.Changed("record") {
		cfg.History.Record = rootFlags.record
	}
	if flags.Changed("history") {
		cfg.History.Path = rootFlags.history
	}

	return cfg, nil
}
