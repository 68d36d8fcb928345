package ast

import "fmt"

// Location represents the source location of a node in the original rule document.
// It enables precise error reporting with file, line, and column information.
type Location struct {
	File   string // Source name (file path or "memory://..." for in-memory input)
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based, 0 when unknown)
}

// String returns a human-readable representation of the location.
// Format: "file:line:column", or "line N" for anonymous sources.
func (l Location) String() string {
	if l.File == "" {
		if l.Line > 0 {
			return fmt.Sprintf("line %d", l.Line)
		}
		return "<unknown>"
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// IsValid returns true if the location carries line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
