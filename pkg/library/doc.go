// Package library maintains the rule library: every rule file under a
// configured directory, parsed together into one Snapshot.
//
// Library.Load parses all files matching the configured glob in path
// order. Watch installs an fsnotify watcher that reloads after a debounce
// interval; a reload that fails on any file leaves the previous snapshot in
// place. Subscribers receive an Event after every load attempt, which the
// HTTP server forwards over a websocket.
package library
