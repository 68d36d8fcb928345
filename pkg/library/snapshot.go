package library

import (
	"time"

	"dorfbook/simparse/pkg/sim/ast"
	"dorfbook/simparse/pkg/sim/encoding"
)

// FileInfo describes one rule file in a snapshot.
type FileInfo struct {
	Path  string `json:"path"`
	Hash  string `json:"hash"`
	Bytes int    `json:"bytes"`
	Rules int    `json:"rules"`
}

// Snapshot is an immutable view of the library after a successful load.
type Snapshot struct {
	// Version is a SHA-256 over every file path and content hash.
	Version  string
	LoadedAt time.Time
	Files    []FileInfo
	Rules    *ast.RuleSet
}

// RuleCount returns the number of rules across all files.
func (s *Snapshot) RuleCount() int {
	if s == nil || s.Rules == nil {
		return 0
	}
	return s.Rules.Len()
}

// SnapshotDocument is the JSON form of a snapshot.
type SnapshotDocument struct {
	Version  string             `json:"version"`
	LoadedAt time.Time          `json:"loaded_at"`
	Files    []FileInfo         `json:"files"`
	Rules    []encoding.RuleDoc `json:"rules"`
}

// Document converts the snapshot for serialization.
func (s *Snapshot) Document() *SnapshotDocument {
	doc := &SnapshotDocument{
		Version:  s.Version,
		LoadedAt: s.LoadedAt,
		Files:    s.Files,
		Rules:    encoding.NewDocument(s.Rules).Rules,
	}
	if doc.Files == nil {
		doc.Files = []FileInfo{}
	}
	return doc
}

// EventType distinguishes library notifications.
type EventType string

const (
	EventReloaded    EventType = "reloaded"
	EventReloadError EventType = "reload_error"
)

// Event is sent to subscribers after every load attempt.
type Event struct {
	Type    EventType `json:"type"`
	Version string    `json:"version,omitempty"`
	Files   int       `json:"files"`
	Rules   int       `json:"rules"`
	Trigger string    `json:"trigger,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
