package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dorfbook/simparse/pkg/history"
)

func sample() []*history.Record {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return []*history.Record{
		{ID: "1", RecordedAt: at, Origin: "http", Source: "memory://rules", Bytes: 10, Result: "ok", Rules: 2, Binds: 3, Duration: 2 * time.Millisecond},
		{ID: "2", RecordedAt: at, Origin: "cli", Source: "bad.md", Bytes: 5, Result: "error", ErrorType: "syntax", ErrorLine: 3, ErrorMessage: "unexpected line, with comma"},
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), sample(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	var got []history.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[1].ErrorLine != 3 {
		t.Errorf("unexpected decode: %+v", got)
	}

	buf.Reset()
	if err := NewJSONExporter(true).Export(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sample(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][12] != "2.000" {
		t.Errorf("duration_ms = %q, want 2.000", rows[1][12])
	}
	if rows[1][10] != "" || rows[2][10] != "3" {
		t.Errorf("error_line columns = %q, %q", rows[1][10], rows[2][10])
	}
	if rows[2][11] != "unexpected line, with comma" {
		t.Errorf("error_message = %q", rows[2][11])
	}
}

func TestTableExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableExporter().Export(context.Background(), sample(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ORIGIN", "3 binds", "line 3: unexpected line, with comma"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{"json", "CSV", "table", "text", ""} {
		if _, err := New(f); err != nil {
			t.Errorf("New(%q) error: %v", f, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
