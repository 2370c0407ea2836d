// Package telemetry provides observability for policylint.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics for watch-mode validation runs
//
// One-shot lint runs only use logging. Watch mode additionally records each
// re-validation in the metrics collector and can expose them on an HTTP
// endpoint (--metrics-addr).
package telemetry
