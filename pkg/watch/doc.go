// Package watch re-runs validation when the watched policy or schema file
// changes. A debouncer coalesces editor write bursts into a single run, and
// an optional cron schedule triggers periodic runs independent of file
// events.
package watch
