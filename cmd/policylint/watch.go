package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"shadowstrike-hq/policylint/pkg/cli"
	"shadowstrike-hq/policylint/pkg/history"
	"shadowstrike-hq/policylint/pkg/policy"
	"shadowstrike-hq/policylint/pkg/telemetry/metrics"
	"shadowstrike-hq/policylint/pkg/watch"
)

var watchFlags struct {
	schedule    string
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch <policy_file> <schema_file>",
	Short: "Re-run validation whenever the policy or schema changes",
	Long: `Watch the policy and schema files and re-run validation on every change.

Each run reports through the log stream; with --record enabled every run is
appended to the history database, and with --metrics-addr set the run counters
are exposed on a Prometheus endpoint. The watcher exits cleanly on SIGINT or
SIGTERM; per-run outcomes do not affect the exit code.

Examples:
  # Re-validate on file changes
  policylint watch policy.yaml schema.json

  # Additionally re-validate every 5 minutes
  policylint watch policy.yaml schema.json --schedule "*/5 * * * *"

  # Expose run metrics for scraping
  policylint watch policy.yaml schema.json --metrics-addr :9090`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron expression for periodic re-validation")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "listen address for the Prometheus metrics endpoint")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupRun(cmd)
	if err != nil {
		fmt.Println("Invalid input provided. See logs for details.")
		return cli.NewCommandError("watch", err)
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Watch.Schedule = watchFlags.schedule
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Watch.MetricsAddr = watchFlags.metricsAddr
	}

	policyPath, schemaPath := args[0], args[1]
	ctx := cli.SetupSignalHandler()

	collector := metrics.NewCollector()
	if cfg.Watch.MetricsAddr != "" {
		serveMetrics(ctx, logger, cfg.Watch.MetricsAddr, collector)
	}

	// One store for the whole session, unlike one-shot runs.
	var store *history.Store
	if cfg.History.Record {
		storeConfig := history.DefaultConfig(cfg.History.Path)
		storeConfig.BusyTimeout = cfg.History.BusyTimeout
		store, err = history.NewStore(storeConfig, logger)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer store.Close()
	}

	// Watcher and scheduler both trigger runs; keep them serialized.
	var runMu sync.Mutex
	runOnce := func() {
		runMu.Lock()
		defer runMu.Unlock()

		start := time.Now()
		report, runErr := runPipeline(logger, cfg, policyPath, schemaPath)
		duration := time.Since(start)

		outcome, kind := "pass", ""
		if runErr != nil {
			outcome = "fail"
			kind = string(policy.KindOf(runErr))
		}
		collector.RecordRun(outcome, kind, duration)

		if store != nil {
			record := &history.Record{
				PolicyPath: policyPath,
				SchemaPath: schemaPath,
				Format:     cfg.Format,
				Outcome:    history.Outcome(outcome),
				Kind:       kind,
				Duration:   duration,
			}
			if runErr != nil {
				record.Message = runErr.Error()
			}
			if err := store.Append(ctx, record); err != nil {
				logger.Warn("failed to record run", "error", err)
			}
		}

		if err := printReport(os.Stdout, cfg.Output, report, runErr); err != nil {
			logger.Warn("failed to print report", "error", err)
		}
	}

	// Initial run before watching.
	runOnce()

	scheduler := watch.NewScheduler(cfg.Watch.Schedule, logger)
	if err := scheduler.Start(ctx, runOnce); err != nil {
		return cli.NewCommandError("watch", err)
	}

	watchConfig := watch.DefaultConfig(policyPath, schemaPath)
	watchConfig.DebounceInterval = cfg.Watch.DebounceInterval
	watcher, err := watch.NewFileWatcher(watchConfig, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Stop()

	if err := watcher.Watch(ctx, runOnce); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// serveMetrics exposes the collector on addr until ctx is cancelled.
func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, collector *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
