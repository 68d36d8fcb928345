// Package server provides the simparse HTTP service.
//
// # Routes
//
//   - POST /sim_parse?format=json|text|yaml - parse the body. A document
//     that does not parse is answered 200 with the encoder's failure form
//     ("null" for JSON) and the failing line in X-Parse-Error-Line.
//     Bodies over server.max_body_bytes get 413.
//   - POST /api/v1/lint?strict=bool - parse and lint. A parse error is a
//     single issue with status 422.
//   - GET /api/v1/library - the active rule library snapshot.
//   - GET /api/v1/history?limit=&offset=&origin=&result=&since=&format=csv
//     - recent parse records, newest first.
//   - GET /ws/library - websocket stream of library reload events.
//   - GET /health, GET /ready, GET /version, GET /metrics.
//
// An optional ?source= names the posted document in errors, metrics and
// history.
//
// # Middleware Chain
//
// Requests pass through, outermost first: Recovery, RequestID, Logging.
// Each route is additionally wrapped by middleware.Instrument, which opens
// a server span and records request metrics under the route pattern.
//
// # Graceful Shutdown
//
// Start serves until its context is cancelled. Shutdown closes websocket
// clients, then waits up to server.shutdown_timeout for in-flight
// requests.
package server
