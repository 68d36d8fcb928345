package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dorfbook/simparse/pkg/config"
)

// ParseMetrics tracks rule parsing and linting.
//
// Metrics:
//   - <ns>_<sub>_parses_total{origin,result}
//   - <ns>_<sub>_parse_duration_seconds{origin}
//   - <ns>_<sub>_rules_parsed_total{origin}
//   - <ns>_<sub>_parse_errors_total{type}
//   - <ns>_<sub>_lint_findings_total{severity}
//   - <ns>_<sub>_source_parses_total{source}
type ParseMetrics struct {
	parsesTotal   *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	rulesParsed   *prometheus.CounterVec
	parseErrors   *prometheus.CounterVec
	lintFindings  *prometheus.CounterVec
	sourceParses  *prometheus.CounterVec
}

// NewParseMetrics creates and registers parse metrics.
func NewParseMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ParseMetrics {
	pm := &ParseMetrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parses_total",
				Help:      "Total number of rule documents parsed",
			},
			[]string{"origin", "result"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Time spent parsing one rule document",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"origin"},
		),
		rulesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_parsed_total",
				Help:      "Total number of rules produced by successful parses",
			},
			[]string{"origin"},
		),
		parseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_errors_total",
				Help:      "Failed parses by error type",
			},
			[]string{"type"},
		),
		lintFindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lint_findings_total",
				Help:      "Lint findings by severity",
			},
			[]string{"severity"},
		),
		sourceParses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_parses_total",
				Help:      "Parses per named rule document",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		pm.parsesTotal,
		pm.parseDuration,
		pm.rulesParsed,
		pm.parseErrors,
		pm.lintFindings,
		pm.sourceParses,
	)

	return pm
}

// RecordParse records one parse.
func (pm *ParseMetrics) RecordParse(origin, result string, duration time.Duration, rules int) {
	pm.parsesTotal.WithLabelValues(origin, result).Inc()
	pm.parseDuration.WithLabelValues(origin).Observe(duration.Seconds())
	if rules > 0 {
		pm.rulesParsed.WithLabelValues(origin).Add(float64(rules))
	}
}
