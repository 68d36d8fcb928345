package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"dorfbook/simparse/pkg/history"
)

// CSVExporter exports records as CSV rows.
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "request_id", "recorded_at", "origin", "source", "bytes", "result",
	"rules", "binds", "error_type", "error_line", "error_message", "duration_ms",
}

// Export writes one row per record.
func (e *CSVExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return history.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(r *history.Record) []string {
	errorLine := ""
	if r.ErrorLine > 0 {
		errorLine = strconv.Itoa(r.ErrorLine)
	}
	return []string{
		r.ID,
		r.RequestID,
		r.RecordedAt.Format(time.RFC3339Nano),
		r.Origin,
		r.Source,
		strconv.Itoa(r.Bytes),
		r.Result,
		strconv.Itoa(r.Rules),
		strconv.Itoa(r.Binds),
		r.ErrorType,
		errorLine,
		r.ErrorMessage,
		strconv.FormatFloat(float64(r.Duration)/float64(time.Millisecond), 'f', 3, 64),
	}
}
