package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"shadowstrike-hq/policylint/pkg/cli"
	"shadowstrike-hq/policylint/pkg/config"
	"shadowstrike-hq/policylint/pkg/history"
	"shadowstrike-hq/policylint/pkg/policy"
	"shadowstrike-hq/policylint/pkg/telemetry/logging"
)

// lintReport is the result of one validation run, also used as the --output
// json payload.
type lintReport struct {
	Valid      bool               `json:"valid"`
	PolicyFile string             `json:"policy_file"`
	SchemaFile string             `json:"schema_file"`
	Errors     []policy.Violation `json:"errors,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupRun(cmd)
	if err != nil {
		fmt.Println("Invalid input provided. See logs for details.")
		return cli.NewCommandError("lint", err)
	}

	start := time.Now()
	report, runErr := runPipeline(logger, cfg, args[0], args[1])
	duration := time.Since(start)

	recordRun(context.Background(), logger, cfg, report, runErr, duration)

	if err := printReport(os.Stdout, cfg.Output, report, runErr); err != nil {
		return cli.NewCommandError("lint", err)
	}

	if runErr != nil {
		return cli.NewCommandError("lint", runErr)
	}
	return nil
}

// setupRun resolves configuration and builds the logger every component
// shares. Configuration or logger failures are usage errors from the user's
// point of view.
func setupRun(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		bootstrapLogger().Error("failed to load configuration", "error", err)
		return nil, nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		bootstrapLogger().Error("failed to configure logging", "error", err)
		return nil, nil, err
	}

	if _, err := cli.ParseOutputFormat(cfg.Output); err != nil {
		logger.Error("invalid output format", "output", cfg.Output)
		return nil, nil, err
	}

	return cfg, logger, nil
}

// bootstrapLogger reports failures that occur before the configured logger
// exists.
func bootstrapLogger() *slog.Logger {
	logger, _ := logging.New(logging.Config{})
	return logger
}

// runPipeline is the linear load-load-validate sequence, short-circuiting on
// the first failure.
func runPipeline(logger *slog.Logger, cfg *config.Config, policyPath, schemaPath string) (*lintReport, error) {
	report := &lintReport{
		PolicyFile: policyPath,
		SchemaFile: schemaPath,
	}

	format, err := policy.ParseFormat(cfg.Format)
	if err != nil {
		logger.Error("invalid policy format", "format", cfg.Format)
		return report, err
	}

	loader := policy.NewLoader(logger)
	doc, err := loader.LoadPolicy(policyPath, format)
	if err != nil {
		return report, err
	}

	schema, err := loader.LoadSchema(schemaPath)
	if err != nil {
		return report, err
	}

	if err := policy.NewValidator(logger).Validate(doc, schema); err != nil {
		var pe *policy.Error
		if errors.As(err, &pe) {
			report.Errors = pe.Violations
		}
		return report, err
	}

	report.Valid = true
	return report, nil
}

// printReport writes the run summary to w in the configured output format.
func printReport(w io.Writer, output string, report *lintReport, runErr error) error {
	outputFormat, err := cli.ParseOutputFormat(output)
	if err != nil {
		return err
	}

	if outputFormat == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, report)
	}

	if runErr == nil {
		_, err := fmt.Fprintln(w, "Policy validation successful.")
		return err
	}
	_, err = fmt.Fprintln(w, failureMessage(runErr))
	return err
}

// failureMessage maps a failure to its user-facing stdout summary. The exit
// code is 1 for every category; only the message distinguishes them.
func failureMessage(err error) string {
	switch policy.KindOf(err) {
	case policy.KindNotFound:
		return "One or more required files were not found. See logs for details."
	case policy.KindInvalidArgument, policy.KindInvalidShape:
		return "Invalid input provided. See logs for details."
	case policy.KindParse:
		var pe *policy.Error
		if errors.As(err, &pe) && pe.Format == policy.FormatJSON {
			return "Error parsing JSON. See logs for details."
		}
		return "Error parsing YAML. See logs for details."
	case policy.KindConformance:
		return "Policy validation failed. See logs for details."
	default:
		return "An unexpected error occurred. See logs for details."
	}
}

// recordRun appends the run to the history database when recording is
// enabled. Recording is advisory: failures are logged and never change the
// run outcome.
func recordRun(ctx context.Context, logger *slog.Logger, cfg *config.Config, report *lintReport, runErr error, duration time.Duration) {
	if !cfg.History.Record {
		return
	}

	storeConfig := history.DefaultConfig(cfg.History.Path)
	storeConfig.BusyTimeout = cfg.History.BusyTimeout

	store, err := history.NewStore(storeConfig, logger)
	if err != nil {
		logger.Warn("failed to open history database", "path", cfg.History.Path, "error", err)
		return
	}
	defer store.Close()

	record := &history.Record{
		PolicyPath: report.PolicyFile,
		SchemaPath: report.SchemaFile,
		Format:     cfg.Format,
		Outcome:    history.OutcomePass,
		Duration:   duration,
	}
	if runErr != nil {
		record.Outcome = history.OutcomeFail
		record.Kind = string(policy.KindOf(runErr))
		record.Message = runErr.Error()
	}

	if err := store.Append(ctx, record); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}
