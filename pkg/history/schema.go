package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the run-history schema.
const Schema = `
-- Validation runs table
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,

    -- Inputs
    policy_path TEXT NOT NULL,
    schema_path TEXT NOT NULL,
    format TEXT NOT NULL,

    -- Result
    outcome TEXT NOT NULL,
    kind TEXT,
    message TEXT,
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version (idempotent).
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version) VALUES (?);
`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
