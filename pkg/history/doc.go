// Package history records parse invocations.
//
// A Record is written for every parse performed by the HTTP server, the CLI
// or the rule library. Records are persisted through a Store (see the
// storage subpackage for the memory and SQLite backends), written
// asynchronously by the recorder subpackage and pruned by the retention
// subpackage.
package history
