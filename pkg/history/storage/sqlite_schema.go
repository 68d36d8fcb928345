package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the history tables. Timestamps are stored as Unix
// nanoseconds so both SQLite drivers round-trip them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS parse_history (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    recorded_at INTEGER NOT NULL,
    origin TEXT NOT NULL,
    source TEXT NOT NULL,
    document_hash TEXT,
    bytes INTEGER NOT NULL,
    result TEXT NOT NULL,
    rules INTEGER NOT NULL DEFAULT 0,
    binds INTEGER NOT NULL DEFAULT 0,
    error_type TEXT,
    error_line INTEGER,
    error_message TEXT,
    duration_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_parse_history_recorded_at ON parse_history(recorded_at);
CREATE INDEX IF NOT EXISTS idx_parse_history_origin ON parse_history(origin);
CREATE INDEX IF NOT EXISTS idx_parse_history_result ON parse_history(result);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, strftime('%s', 'now'))`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const selectColumns = `id, request_id, recorded_at, origin, source, document_hash, bytes, result,
	rules, binds, error_type, error_line, error_message, duration_ns`
