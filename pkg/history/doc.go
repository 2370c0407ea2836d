// Package history persists one record per validation run to a SQLite
// database. Recording is optional (--record) and advisory: a failure to
// append a record is logged and never changes the run outcome or exit code.
package history
