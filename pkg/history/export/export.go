// Package export writes history records as JSON, CSV or an aligned text
// table.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dorfbook/simparse/pkg/history"
)

// Exporter writes a batch of records.
type Exporter interface {
	Export(ctx context.Context, records []*history.Record, w io.Writer) error
}

// Formats lists the accepted format names.
var Formats = []string{"csv", "json", "table"}

// New returns the exporter for format.
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(true), nil
	case "csv":
		return NewCSVExporter(true), nil
	case "table", "text", "":
		return NewTableExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want one of %s)",
			format, strings.Join(Formats, ", "))
	}
}
