// Package middleware provides the HTTP middleware chain of the simparse
// server: request IDs, access logging, panic recovery and per-route
// tracing and metrics.
//
// Global middleware wraps the whole mux:
//
//	handler = RequestID(Logging(logger)(mux))
//	handler = Recovery(handler)
//
// Instrument wraps individual routes so spans and metrics carry the route
// pattern rather than the raw path.
package middleware
