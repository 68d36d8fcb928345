package config

import "time"

// Config is the root configuration structure for the simparse service.
// It contains all configuration sections for the HTTP server, the rule
// parser, the watched rule library, parse history storage and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and request size limits.
	Server ServerConfig `yaml:"server"`

	// Parser contains rule parser and lint settings.
	Parser ParserConfig `yaml:"parser"`

	// Library contains configuration for the directory of rule files that
	// is loaded at startup and optionally watched for changes.
	Library LibraryConfig `yaml:"library"`

	// History contains configuration for recording parse invocations
	// including backend selection and retention.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090", "0.0.0.0:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of a rule document posted to the server.
	// Larger bodies are rejected with 413.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// DefaultFormat is the output encoding used when a request does not
	// pass ?format=.
	// Options: "json", "text", "yaml"
	// Default: "json"
	DefaultFormat string `yaml:"default_format"`
}

// ParserConfig contains rule parser configuration.
type ParserConfig struct {
	// MaxFileSize is the largest rule file the parser will read, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// ContextLines is the number of source lines shown around a parse error.
	// Default: 2
	ContextLines int `yaml:"context_lines"`

	// StrictLint promotes lint warnings to errors.
	// Default: false
	StrictLint bool `yaml:"strict_lint"`
}

// LibraryConfig contains configuration for the rule library.
type LibraryConfig struct {
	// Enabled controls whether a rule library is loaded at all.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Dir is the directory scanned for rule files.
	// Default: "./rules"
	Dir string `yaml:"dir"`

	// Pattern is the glob matched against file names inside Dir.
	// Default: "*.md"
	Pattern string `yaml:"pattern"`

	// Watch reloads the library when files in Dir change.
	// Default: true
	Watch bool `yaml:"watch"`

	// Debounce coalesces bursts of filesystem events into one reload.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// HistoryConfig contains configuration for parse history recording.
type HistoryConfig struct {
	// Enabled controls whether parse invocations are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Memory contains in-memory backend settings.
	Memory MemoryHistoryConfig `yaml:"memory"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteHistoryConfig `yaml:"sqlite"`

	// Recorder controls asynchronous record writes.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention controls how long records are kept.
	Retention RetentionConfig `yaml:"retention"`

	// QueryDefaultLimit is the number of records returned when a query
	// does not specify a limit.
	// Default: 50
	QueryDefaultLimit int `yaml:"query_default_limit"`

	// QueryMaxLimit caps the number of records a single query may return.
	// Default: 1000
	QueryMaxLimit int `yaml:"query_max_limit"`
}

// MemoryHistoryConfig contains in-memory history settings.
type MemoryHistoryConfig struct {
	// MaxRecords bounds the in-memory store; the oldest records are evicted.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}

// SQLiteHistoryConfig contains SQLite history backend settings.
type SQLiteHistoryConfig struct {
	// Path is the database file.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the connection pool size.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the number of idle pooled connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig controls the asynchronous history recorder.
type RecorderConfig struct {
	// AsyncBuffer is the number of records queued before writes block.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds enqueueing and each storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig controls history pruning.
type RetentionConfig struct {
	// Days is how long records are kept. A negative value keeps records
	// forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords caps the total number of stored records. Zero is unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for the background pruner.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "dorfbook"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "simparse"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for parse and request
	// duration (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "simparse"
	ServiceName string `yaml:"service_name"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
