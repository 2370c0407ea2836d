package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Config contains configuration for the SQLite history store.
type Config struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:        path,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// Store is a SQLite-backed run-history store.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// NewStore opens (or creates) the history database at config.Path and
// initializes the schema.
func NewStore(config *Config, logger *slog.Logger) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("history: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database %q: %w", config.Path, err)
	}

	s := &Store{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("history: failed to enable WAL mode: %w", err)
		}
	}

	busyTimeout := s.config.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("history: failed to set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("history: failed to create schema: %w", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("history: failed to insert schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("history: failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("history: schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// Append persists a run record. An empty ID and zero RecordedAt are filled in.
func (s *Store) Append(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (
			id, recorded_at,
			policy_path, schema_path, format,
			outcome, kind, message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Empty strings become NULL for optional fields.
	var kindVal, messageVal interface{}
	if record.Kind != "" {
		kindVal = record.Kind
	}
	if record.Message != "" {
		messageVal = record.Message
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RecordedAt,
		record.PolicyPath, record.SchemaPath, record.Format,
		string(record.Outcome), kindVal, messageVal,
		record.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("history: failed to append record: %w", err)
	}

	s.logger.Debug("run recorded",
		"id", record.ID,
		"outcome", string(record.Outcome),
	)

	return nil
}

// List returns the most recent records, newest first. A non-positive limit
// defaults to 100.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, recorded_at, policy_path, schema_path, format,
		       outcome, kind, message, duration_ms
		FROM runs
		ORDER BY recorded_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			record     Record
			outcome    string
			kind       sql.NullString
			message    sql.NullString
			durationMs int64
		)
		if err := rows.Scan(
			&record.ID, &record.RecordedAt,
			&record.PolicyPath, &record.SchemaPath, &record.Format,
			&outcome, &kind, &message, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("history: failed to scan record: %w", err)
		}
		record.Outcome = Outcome(outcome)
		record.Kind = kind.String
		record.Message = message.String
		record.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: failed to iterate records: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
