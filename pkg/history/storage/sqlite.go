package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"dorfbook/simparse/pkg/history"
)

// Driver names registered by the two SQLite drivers.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCgo     = "sqlite3" // github.com/mattn/go-sqlite3
)

const defaultQueryLimit = 100

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" opens a private
	// in-memory database.
	Path string

	// Driver is DriverModernc or DriverCgo.
	// Default: DriverModernc
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		Driver:       DriverModernc,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements history.Store on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, creating the parent directory and
// schema when needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverCgo {
		return nil, history.NewStorageError("sqlite", "open",
			fmt.Errorf("unknown driver %q", config.Driver))
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	inMemory := config.Path == ":memory:"
	if !inMemory {
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, history.NewStorageError("sqlite", "mkdir", err)
			}
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	if inMemory {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite history storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets pragmas, creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return history.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return history.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	s.logger.Debug("schema version verified", "version", version.Int64)
	return nil
}

// Store inserts a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *history.Record) error {
	const query = `
		INSERT INTO parse_history (
			id, request_id, recorded_at, origin, source, document_hash, bytes, result,
			rules, binds, error_type, error_line, error_message, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, nullString(record.RequestID), record.RecordedAt.UnixNano(),
		record.Origin, record.Source, nullString(record.DocumentHash), record.Bytes, record.Result,
		record.Rules, record.Binds,
		nullString(record.ErrorType), record.ErrorLine, nullString(record.ErrorMessage),
		int64(record.Duration),
	)
	if err != nil {
		return history.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	if query == nil {
		query = &history.Query{}
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM parse_history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY recorded_at DESC, rowid DESC"

	limit := defaultQueryLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*history.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}

	whereClause, args := buildWhereClause(query)
	sqlQuery := "SELECT COUNT(*) FROM parse_history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, history.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}

	whereClause, args := buildWhereClause(query)
	sqlQuery := "DELETE FROM parse_history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "rows_affected", err)
	}

	if deleted > 0 {
		s.logger.Info("deleted history records", "count", deleted)
	}
	return deleted, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return history.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite history storage closed")
	return nil
}

func buildWhereClause(query *history.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.Since != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if query.Until != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, query.Until.UnixNano())
	}
	if query.Origin != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, query.Origin)
	}
	if query.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, query.Source)
	}
	if query.Result != "" {
		conditions = append(conditions, "result = ?")
		args = append(args, query.Result)
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*history.Record, error) {
	var (
		record                                           history.Record
		requestID, documentHash, errorType, errorMessage sql.NullString
		errorLine                                        sql.NullInt64
		recordedAt, duration                             int64
	)

	err := rows.Scan(
		&record.ID, &requestID, &recordedAt, &record.Origin, &record.Source,
		&documentHash, &record.Bytes, &record.Result,
		&record.Rules, &record.Binds,
		&errorType, &errorLine, &errorMessage, &duration,
	)
	if err != nil {
		return nil, err
	}

	record.RequestID = requestID.String
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	record.DocumentHash = documentHash.String
	record.ErrorType = errorType.String
	record.ErrorLine = int(errorLine.Int64)
	record.ErrorMessage = errorMessage.String
	record.Duration = time.Duration(duration)

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
