package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Linting:") {
		t.Errorf("output missing label: %q", output)
	}
	if !strings.Contains(output, "(4/4 files)") {
		t.Errorf("output missing final count: %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("expected no output for zero total, got %q", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(10)
	progress.Error(errors.New("rules.md: permission denied"))

	if !strings.Contains(buf.String(), "✗ Error: rules.md: permission denied") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNoProgress(t *testing.T) {
	var p ProgressReporter = NoProgress{}
	p.Start(3)
	p.Update(1)
	p.Error(errors.New("ignored"))
	p.Finish()
}
