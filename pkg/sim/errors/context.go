package errors

import (
	"fmt"
	"strings"

	"dorfbook/simparse/pkg/sim/ast"
)

// ExtractContext renders the lines around location from the given source text.
// It returns a formatted string showing the error line marked with "->" and,
// when the column is known, a caret under the offending token.
func ExtractContext(source string, location ast.Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	errorLine := location.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// WithContext fills err.Context from the source text and returns err.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err.Location.IsValid() {
		err.Context = ExtractContext(source, err.Location, contextLines)
	}
	return err
}
