// Package health implements liveness and readiness probes.
//
// Liveness answers as long as the process runs. Readiness runs every
// registered component check (history store, rule library) with a
// per-check timeout and reports 503 if any fails.
package health
