package errors

import (
	"fmt"
	"strings"

	"dorfbook/simparse/pkg/sim/ast"
)

// ErrorType categorizes the type of error encountered during parsing or validation.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // Document does not follow the rule grammar
	ErrorTypeStructural ErrorType = "structural" // Lint: rule-level problems (duplicate titles, ...)
	ErrorTypeSemantic   ErrorType = "semantic"   // Lint: contradictory or no-op binds
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Severity distinguishes lint findings that fail validation from advisory ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error represents a rich error with location, context, and suggestions.
// A parse failure is always an *Error with Type ErrorTypeSyntax.
type Error struct {
	Type       ErrorType    // Category of error
	Severity   Severity     // Empty means SeverityError
	Message    string       // Error message
	Location   ast.Location // Source location (file, line, column)
	Context    string       // Surrounding lines of source
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Line returns the 1-based line the error refers to, or 0.
func (e *Error) Line() int {
	return e.Location.Line
}

// IsWarning returns true if the error is advisory only.
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// IsParseError reports whether err is (or wraps) a grammar violation.
func IsParseError(err error) bool {
	var e *Error
	return As(err, &e) && e.Type == ErrorTypeSyntax
}

// ErrorList holds lint findings in the order they were found.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddErrorWithSuggestion records an error-severity finding.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.add(SeverityError, errType, message, location, suggestion)
}

// AddWarning records an advisory finding.
func (el *ErrorList) AddWarning(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.add(SeverityWarning, errType, message, location, suggestion)
}

func (el *ErrorList) add(sev Severity, errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Severity:   sev,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the error list contains any entries.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of entries in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error lists every finding, one block each.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d finding(s)\n", el.Count())
	for _, err := range el.Errors {
		sb.WriteString("\n")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil for an empty list and the list itself otherwise.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// BySeverity returns all entries with the given severity. Entries without
// a severity count as errors.
func (el *ErrorList) BySeverity(severity Severity) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Severity == severity || (severity == SeverityError && err.Severity == "") {
			result = append(result, err)
		}
	}
	return result
}
