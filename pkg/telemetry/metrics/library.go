package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"dorfbook/simparse/pkg/config"
)

// LibraryMetrics tracks the watched rule library, its websocket
// subscribers and parse history retention.
type LibraryMetrics struct {
	reloads       *prometheus.CounterVec
	rules         prometheus.Gauge
	files         prometheus.Gauge
	wsClients     prometheus.Gauge
	historyPruned prometheus.Counter
}

// NewLibraryMetrics creates and registers library metrics.
func NewLibraryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LibraryMetrics {
	lm := &LibraryMetrics{
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "library_reloads_total",
				Help:      "Rule library reloads by result",
			},
			[]string{"result"},
		),
		rules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "library_rules",
			Help:      "Number of rules in the current library snapshot",
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "library_files",
			Help:      "Number of rule files in the current library snapshot",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "websocket_clients",
			Help:      "Connected library websocket subscribers",
		}),
		historyPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_pruned_total",
			Help:      "History records deleted by retention",
		}),
	}

	registry.MustRegister(lm.reloads, lm.rules, lm.files, lm.wsClients, lm.historyPruned)
	return lm
}

// RecordReload records a reload. A failed reload keeps the previous
// snapshot, so the gauges only move on success.
func (lm *LibraryMetrics) RecordReload(ok bool, rules, files int) {
	if !ok {
		lm.reloads.WithLabelValues("error").Inc()
		return
	}
	lm.reloads.WithLabelValues("ok").Inc()
	lm.rules.Set(float64(rules))
	lm.files.Set(float64(files))
}
