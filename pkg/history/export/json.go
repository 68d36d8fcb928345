package export

import (
	"context"
	"encoding/json"
	"io"

	"dorfbook/simparse/pkg/history"
)

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records as a JSON array; an empty batch is "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	if records == nil {
		records = []*history.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return history.NewExportError("json", len(records), err)
	}
	return nil
}
