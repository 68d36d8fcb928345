package encoding

import (
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// Issue is the serializable form of a parse error or lint finding.
type Issue struct {
	Type       string `json:"type" yaml:"type"`
	Severity   string `json:"severity" yaml:"severity"`
	Message    string `json:"message" yaml:"message"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column     int    `json:"column,omitempty" yaml:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// NewIssue converts one rich error.
func NewIssue(e *simErrors.Error) Issue {
	severity := e.Severity
	if severity == "" {
		severity = simErrors.SeverityError
	}
	return Issue{
		Type:       string(e.Type),
		Severity:   string(severity),
		Message:    e.Message,
		File:       e.Location.File,
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Suggestion: e.Suggestion,
	}
}

// NewIssues converts an error list; a nil list yields an empty slice.
func NewIssues(el *simErrors.ErrorList) []Issue {
	issues := []Issue{}
	if el == nil {
		return issues
	}
	for _, e := range el.Errors {
		issues = append(issues, NewIssue(e))
	}
	return issues
}
