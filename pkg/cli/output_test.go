package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type lintRow struct {
	File  string `json:"file" yaml:"file"`
	Valid bool   `json:"valid" yaml:"valid"`
}

type lintRows []lintRow

func (r lintRows) Header() []string { return []string{"file", "valid"} }

func (r lintRows) Rows() [][]string {
	out := make([][]string, len(r))
	for i, row := range r {
		out[i] = []string{row.File, fmt.Sprint(row.Valid)}
	}
	return out
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("3 rules")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "3 rules\n" {
		t.Errorf("Format() = %q", output)
	}

	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, "3 rules"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "3 rules\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
	}{
		{"simple string", "test", false},
		{"map with indent", map[string]string{"key": "value"}, true},
		{"rows", lintRows{{File: "a.md", Valid: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			var result any
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestYAMLFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	data := lintRows{{File: "a.md", Valid: true}, {File: "b.md", Valid: false}}

	if err := (&YAMLFormatter{}).FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded []lintRow
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}
	if len(decoded) != 2 || decoded[1].File != "b.md" || decoded[1].Valid {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := &CSVFormatter{}
	data := lintRows{{File: "a.md", Valid: true}, {File: "b,c.md", Valid: false}}

	output, err := formatter.Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "file,valid\na.md,true\n\"b,c.md\",false\n"
	if string(output) != want {
		t.Errorf("Format() = %q, want %q", output, want)
	}

	if _, err := formatter.Format("not rows"); err == nil {
		t.Error("expected an error for a value without rows")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatYAML, "*cli.YAMLFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := fmt.Sprintf("%T", NewFormatter(tt.format)); got != tt.want {
				t.Errorf("NewFormatter(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json", FormatText, FormatJSON); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	_, err := ParseFormat("xml", FormatText, FormatJSON)
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}
