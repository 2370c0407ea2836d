package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector tracks validation runs in watch mode.
//
// Metrics:
//   - policylint_runs_total: validation runs by outcome and failure kind
//   - policylint_run_duration_seconds: duration of the load-load-validate
//     pipeline
type Collector struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policylint",
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"outcome", "kind"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "policylint",
				Name:      "run_duration_seconds",
				Help:      "Duration of a validation run in seconds",
				// Runs are file reads plus an in-memory schema check
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
		),
	}

	c.registry.MustRegister(c.runsTotal, c.runDuration)

	return c
}

// RecordRun records one validation run. kind is the failure category and must
// be empty for passing runs.
func (c *Collector) RecordRun(outcome, kind string, duration time.Duration) {
	c.runsTotal.WithLabelValues(outcome, kind).Inc()
	c.runDuration.Observe(duration.Seconds())
}

// Registry returns the underlying registry, for tests and custom handlers.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
