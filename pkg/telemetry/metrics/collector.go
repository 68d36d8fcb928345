package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dorfbook/simparse/pkg/config"
)

// Collector owns every Prometheus metric the service exports and the
// registry they live in. All Record methods are no-ops when metrics are
// disabled, so callers never need to check.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	parseMetrics   *ParseMetrics
	httpMetrics    *HTTPMetrics
	libraryMetrics *LibraryMetrics

	// Parse sources are caller-controlled; cap how many distinct values
	// become label values.
	sourceLimiter *CardinalityLimiter
}

// NewCollector creates a collector with the specified configuration and
// registry. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		parseMetrics:   NewParseMetrics(cfg, registry),
		httpMetrics:    NewHTTPMetrics(cfg, registry),
		libraryMetrics: NewLibraryMetrics(cfg, registry),
		sourceLimiter:  NewCardinalityLimiter(1000),
	}
}

// RecordParse records one parse invocation. origin says where the document
// came from ("http", "cli", "library"); result is "ok" or "error".
func (c *Collector) RecordParse(origin, result string, duration time.Duration, rules int) {
	if !c.config.Enabled {
		return
	}
	c.parseMetrics.RecordParse(origin, result, duration, rules)
}

// RecordParseError counts a failed parse by error type ("syntax", "io").
func (c *Collector) RecordParseError(errType string) {
	if !c.config.Enabled {
		return
	}
	c.parseMetrics.parseErrors.WithLabelValues(errType).Inc()
}

// RecordLintFindings counts lint findings by severity.
func (c *Collector) RecordLintFindings(errors, warnings int) {
	if !c.config.Enabled {
		return
	}
	c.parseMetrics.lintFindings.WithLabelValues("error").Add(float64(errors))
	c.parseMetrics.lintFindings.WithLabelValues("warning").Add(float64(warnings))
}

// RecordSourceParse counts parses of one named document. Sources beyond the
// cardinality limit are folded into "other".
func (c *Collector) RecordSourceParse(source string) {
	if !c.config.Enabled {
		return
	}
	if !c.sourceLimiter.Allow(source) {
		source = "other"
	}
	c.parseMetrics.sourceParses.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.httpMetrics.RecordRequest(route, method, status, duration)
}

// RecordLibraryReload records one library reload attempt.
func (c *Collector) RecordLibraryReload(ok bool, rules, files int) {
	if !c.config.Enabled {
		return
	}
	c.libraryMetrics.RecordReload(ok, rules, files)
}

// SetWebsocketClients sets the number of connected library subscribers.
func (c *Collector) SetWebsocketClients(n int) {
	if !c.config.Enabled {
		return
	}
	c.libraryMetrics.wsClients.Set(float64(n))
}

// RecordHistoryPruned counts history records removed by retention.
func (c *Collector) RecordHistoryPruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.libraryMetrics.historyPruned.Add(float64(n))
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of distinct label values admitted.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already admitted or there is room for it.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
