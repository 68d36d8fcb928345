package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if !cfg.History.Enabled || !cfg.Telemetry.Metrics.Enabled || !cfg.Library.Watch {
		t.Error("boolean switches that default to true were not set")
	}
	if cfg.Library.Enabled {
		t.Error("library should be disabled by default")
	}
	if cfg.History.Recorder.AsyncBuffer != DefaultHistoryRecorderBuffer {
		t.Errorf("recorder buffer = %d", cfg.History.Recorder.AsyncBuffer)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server != first.Server || cfg.Parser != first.Parser || cfg.Library != first.Library {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != len(DefaultDurationBuckets) {
		t.Errorf("buckets = %v", cfg.Telemetry.Metrics.DurationBuckets)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: "60s"
  default_format: "text"

library:
  enabled: true
  dir: "/srv/rules"
  watch: false

history:
  backend: "sqlite"
  sqlite:
    path: "/tmp/history.db"
    driver: "sqlite3"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("write timeout should default, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.DefaultFormat != "text" {
		t.Errorf("default format = %q", cfg.Server.DefaultFormat)
	}
	if !cfg.Library.Enabled || cfg.Library.Watch {
		t.Errorf("library = %+v", cfg.Library)
	}
	if cfg.History.SQLite.Driver != "sqlite3" {
		t.Errorf("driver = %q", cfg.History.SQLite.Driver)
	}
	if !cfg.History.SQLite.WALMode {
		t.Error("WAL mode should stay enabled when the file does not mention it")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := LoadConfig(writeConfig(t, "server: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}

	_, err := LoadConfig(writeConfig(t, "server:\n  default_format: xml\n"))
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != "server.default_format" {
		t.Errorf("errors = %v", verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:1\"\n")

	t.Setenv("SIMPARSE_SERVER_LISTEN_ADDRESS", "127.0.0.1:2")
	t.Setenv("SIMPARSE_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SIMPARSE_SERVER_MAX_BODY_BYTES", "2048")
	t.Setenv("SIMPARSE_HISTORY_ENABLED", "false")
	t.Setenv("SIMPARSE_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("SIMPARSE_SERVER_IDLE_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:2" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxBodyBytes != 2048 {
		t.Errorf("max body bytes = %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by env")
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("malformed override should be ignored, got %v", cfg.Server.IdleTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("SIMPARSE_TELEMETRY_LOGGING_FORMAT", "yaml")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "telemetry.logging.format") {
		t.Errorf("expected logging format validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"negative context lines", func(c *Config) { c.Parser.ContextLines = -1 }, "parser.context_lines"},
		{"library without dir", func(c *Config) { c.Library.Enabled = true; c.Library.Dir = "" }, "library.dir"},
		{"unknown backend", func(c *Config) { c.History.Backend = "postgres" }, "history.backend"},
		{"unknown driver", func(c *Config) { c.History.Backend = "sqlite"; c.History.SQLite.Driver = "pgx" }, "history.sqlite.driver"},
		{"negative recorder timeout", func(c *Config) { c.History.Recorder.WriteTimeout = -time.Second }, "history.recorder.write_timeout"},
		{"bad schedule", func(c *Config) { c.History.Retention.PruneSchedule = "every day" }, "history.retention.prune_schedule"},
		{"max below default limit", func(c *Config) { c.History.QueryMaxLimit = 1 }, "history.query_max_limit"},
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"ratio out of range", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s in %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.History.Enabled = false
	cfg.History.Backend = "nonsense"
	cfg.Library.Dir = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled sections should not be validated: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if one.Error() != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", one.Error())
	}

	two := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(two.Error(), "2 errors") || !strings.Contains(two.Error(), "  - b: worse") {
		t.Errorf("Error() = %q", two.Error())
	}
}

func resetSingleton() {
	SetConfig(nil)
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetSingleton()
	defer resetSingleton()

	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:7000\"\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if got := MustGetConfig().Server.ListenAddress; got != "127.0.0.1:7000" {
		t.Errorf("listen address = %q", got)
	}

	// Later calls are ignored.
	other := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:7001\"\n")
	if err := Initialize(other); err != nil {
		t.Fatal(err)
	}
	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7000" {
		t.Errorf("second Initialize changed config to %q", got)
	}

	if err := ReloadConfig(other); err != nil {
		t.Fatal(err)
	}
	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7001" {
		t.Errorf("ReloadConfig did not apply, got %q", got)
	}

	if err := ReloadConfig(writeConfig(t, "server:\n  default_format: xml\n")); err == nil {
		t.Error("expected reload of invalid config to fail")
	}
	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7001" {
		t.Errorf("failed reload replaced config, got %q", got)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetSingleton()
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig should panic before Initialize")
		}
	}()
	MustGetConfig()
}
