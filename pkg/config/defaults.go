package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = int64(1048576)
	DefaultFormat          = "json"

	// Parser defaults
	DefaultParserMaxFileSize  = int64(10 * 1024 * 1024)
	DefaultParserContextLines = 2

	// Library defaults
	DefaultLibraryDir      = "./rules"
	DefaultLibraryPattern  = "*.md"
	DefaultLibraryWatch    = true
	DefaultLibraryDebounce = 100 * time.Millisecond

	// History defaults
	DefaultHistoryEnabled           = true
	DefaultHistoryBackend           = "memory"
	DefaultHistoryMemoryMaxRecords  = 10000
	DefaultHistorySQLitePath        = "data/history.db"
	DefaultHistorySQLiteDriver      = "sqlite"
	DefaultHistorySQLiteMaxOpen     = 10
	DefaultHistorySQLiteMaxIdle     = 5
	DefaultHistorySQLiteWALMode     = true
	DefaultHistorySQLiteBusyTimeout = 5 * time.Second
	DefaultHistoryRecorderBuffer    = 1000
	DefaultHistoryRecorderTimeout   = 5 * time.Second
	DefaultHistoryRetentionDays     = 30
	DefaultHistoryPruneSchedule     = "0 3 * * *"
	DefaultHistoryQueryDefaultLimit = 50
	DefaultHistoryQueryMaxLimit     = 1000

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "dorfbook"
	DefaultMetricsSubsystem    = "simparse"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingTimeout      = 10 * time.Second
	DefaultTracingServiceName  = "simparse"
	DefaultLivenessPath        = "/health"
	DefaultReadinessPath       = "/ready"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// DefaultDurationBuckets are the histogram buckets for parse and request
// durations, in seconds.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// NewDefaultConfig returns a configuration with every default applied,
// including boolean switches that default to true. LoadConfig decodes the
// YAML file over this value, so a file only needs the fields it changes.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Library.Watch = DefaultLibraryWatch
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.History.SQLite.WALMode = DefaultHistorySQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.DefaultFormat == "" {
		cfg.Server.DefaultFormat = DefaultFormat
	}

	// Parser defaults
	if cfg.Parser.MaxFileSize == 0 {
		cfg.Parser.MaxFileSize = DefaultParserMaxFileSize
	}
	if cfg.Parser.ContextLines == 0 {
		cfg.Parser.ContextLines = DefaultParserContextLines
	}

	// Library defaults
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = DefaultLibraryDir
	}
	if cfg.Library.Pattern == "" {
		cfg.Library.Pattern = DefaultLibraryPattern
	}
	if cfg.Library.Debounce == 0 {
		cfg.Library.Debounce = DefaultLibraryDebounce
	}

	applyHistoryDefaults(cfg)

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

func applyHistoryDefaults(cfg *Config) {
	h := &cfg.History
	if h.Backend == "" {
		h.Backend = DefaultHistoryBackend
	}
	if h.Memory.MaxRecords == 0 {
		h.Memory.MaxRecords = DefaultHistoryMemoryMaxRecords
	}
	if h.SQLite.Path == "" {
		h.SQLite.Path = DefaultHistorySQLitePath
	}
	if h.SQLite.Driver == "" {
		h.SQLite.Driver = DefaultHistorySQLiteDriver
	}
	if h.SQLite.MaxOpenConns == 0 {
		h.SQLite.MaxOpenConns = DefaultHistorySQLiteMaxOpen
	}
	if h.SQLite.MaxIdleConns == 0 {
		h.SQLite.MaxIdleConns = DefaultHistorySQLiteMaxIdle
	}
	if h.SQLite.BusyTimeout == 0 {
		h.SQLite.BusyTimeout = DefaultHistorySQLiteBusyTimeout
	}
	if h.Recorder.AsyncBuffer == 0 {
		h.Recorder.AsyncBuffer = DefaultHistoryRecorderBuffer
	}
	if h.Recorder.WriteTimeout == 0 {
		h.Recorder.WriteTimeout = DefaultHistoryRecorderTimeout
	}
	if h.Retention.Days == 0 {
		h.Retention.Days = DefaultHistoryRetentionDays
	}
	if h.Retention.PruneSchedule == "" {
		h.Retention.PruneSchedule = DefaultHistoryPruneSchedule
	}
	if h.QueryDefaultLimit == 0 {
		h.QueryDefaultLimit = DefaultHistoryQueryDefaultLimit
	}
	if h.QueryMaxLimit == 0 {
		h.QueryMaxLimit = DefaultHistoryQueryMaxLimit
	}
}
