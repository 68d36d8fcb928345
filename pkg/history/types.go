package history

import (
	"context"
	"time"
)

// Origin values identify what triggered a parse.
const (
	OriginHTTP    = "http"
	OriginCLI     = "cli"
	OriginLibrary = "library"
)

// Result values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Record describes one parse invocation.
type Record struct {
	// ID is a unique identifier (UUID) for this record.
	ID string `json:"id"`

	// RequestID correlates the record with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`

	// RecordedAt is when the parse finished.
	RecordedAt time.Time `json:"recorded_at"`

	// Origin is one of OriginHTTP, OriginCLI or OriginLibrary.
	Origin string `json:"origin"`

	// Source names the document (file path or memory://rules).
	Source string `json:"source"`

	// DocumentHash is the SHA-256 of the parsed document.
	DocumentHash string `json:"document_hash,omitempty"`

	// Bytes is the document size.
	Bytes int `json:"bytes"`

	// Result is ResultOK or ResultError.
	Result string `json:"result"`

	// Rules and Binds count what was produced on success.
	Rules int `json:"rules"`
	Binds int `json:"binds"`

	// ErrorType, ErrorLine and ErrorMessage are set when Result is ResultError.
	ErrorType    string `json:"error_type,omitempty"`
	ErrorLine    int    `json:"error_line,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Duration is how long the parse took.
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the record describes a failed parse.
func (r *Record) Failed() bool {
	return r.Result == ResultError
}

// Query filters history records. Zero-valued fields are ignored.
// Results are ordered newest first.
type Query struct {
	// Since and Until bound RecordedAt, both inclusive.
	Since *time.Time
	Until *time.Time

	Origin string
	Source string

	// Result filters on ResultOK or ResultError.
	Result string

	// Limit caps the number of records returned. Zero means no limit for
	// Count and Delete, and the store default for Query.
	Limit  int
	Offset int
}

// Store persists history records.
type Store interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Limit and Offset are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
