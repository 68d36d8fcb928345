// Package metrics provides Prometheus metrics for the simparse service.
//
// # Metrics Categories
//
//   - Parse: parse count and duration by origin, rules produced, errors by
//     type, lint findings by severity
//   - HTTP: request count by route/method/code and duration by route
//   - Library: reloads, current rule and file counts, websocket clients,
//     history records pruned
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordParse("http", "ok", elapsed, rs.Len())
//	mux.Handle("/metrics", collector.Handler())
//
// Every metric is registered on the collector's own registry, so tests can
// create as many collectors as they like.
package metrics
