package errors

import (
	"fmt"
	"strings"
	"testing"

	"dorfbook/simparse/pkg/sim/ast"
)

func TestError_Format(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeSyntax,
		Message:    "unexpected content",
		Location:   ast.Location{File: "rules.md", Line: 4, Column: 2},
		Suggestion: "Did you mean '->'?",
	}

	got := err.Error()
	for _, want := range []string{"[syntax] unexpected content", "--> rules.md:4:2", "suggestion: Did you mean '->'?"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
	if err.Line() != 4 {
		t.Errorf("Line() = %d, want 4", err.Line())
	}
}

func TestIsParseError(t *testing.T) {
	parseErr := &Error{Type: ErrorTypeSyntax, Message: "bad"}
	ioErr := &Error{Type: ErrorTypeIO, Message: "missing"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"syntax", parseErr, true},
		{"wrapped syntax", fmt.Errorf("loading: %w", parseErr), true},
		{"io", ioErr, false},
		{"plain", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsParseError(tt.err); got != tt.want {
				t.Errorf("IsParseError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorList(t *testing.T) {
	el := NewErrorList()
	if el.ToError() != nil {
		t.Error("empty list should convert to nil error")
	}

	el.AddErrorWithSuggestion(ErrorTypeStructural, "duplicate title", ast.Location{Line: 1}, "")
	el.AddWarning(ErrorTypeSemantic, "no-op effect", ast.Location{Line: 5}, "")

	if el.Count() != 2 {
		t.Errorf("Count() = %d, want 2", el.Count())
	}
	if len(el.BySeverity(SeverityWarning)) != 1 || len(el.BySeverity(SeverityError)) != 1 {
		t.Error("BySeverity() split is wrong")
	}
	if el.Errors[1].Type != ErrorTypeSemantic {
		t.Errorf("findings out of order: %v", el.Errors)
	}
	if !strings.Contains(el.Error(), "2 finding(s)") {
		t.Errorf("Error() = %q", el.Error())
	}
}

func TestExtractContext(t *testing.T) {
	source := "### A\n> a\n    x +y\n    bad line\n    z +w\n"
	got := ExtractContext(source, ast.Location{Line: 4, Column: 5}, 1)

	if !strings.Contains(got, "-> 4 |     bad line") {
		t.Errorf("context missing marked line:\n%s", got)
	}
	if !strings.Contains(got, "  3 |     x +y") || !strings.Contains(got, "  5 |     z +w") {
		t.Errorf("context missing neighbours:\n%s", got)
	}
	if !strings.Contains(got, "|     ^") {
		t.Errorf("context missing caret:\n%s", got)
	}

	if ExtractContext(source, ast.Location{Line: 99}, 1) != "" {
		t.Error("out of range line should give empty context")
	}
}

func TestSuggestSeparator(t *testing.T) {
	tests := []struct {
		line    string
		suggest bool
	}{
		{"=>", true},
		{"- >", true},
		{"-->", true},
		{">", true},
		{"thing", false},
		{"@@@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := SuggestSeparator(tt.line)
			if (got != "") != tt.suggest {
				t.Errorf("SuggestSeparator(%q) = %q, want suggestion=%v", tt.line, got, tt.suggest)
			}
		})
	}
}

func TestSuggestName(t *testing.T) {
	if got := SuggestName("hungy", []string{"hungry", "angry", "tired"}); got != "Did you mean 'hungry'?" {
		t.Errorf("SuggestName() = %q", got)
	}
	if got := SuggestName("zzzzzz", []string{"hungry"}); got != "" {
		t.Errorf("SuggestName() = %q, want empty", got)
	}
	if got := SuggestName("thng", []string{"thng", "other", "thing"}); got != "Did you mean 'thing'?" {
		t.Errorf("SuggestName() = %q, want the closest other name", got)
	}
	if got := SuggestName("cat", []string{"concatenate"}); got != "" {
		t.Errorf("SuggestName() = %q, want empty beyond two edits", got)
	}
}
