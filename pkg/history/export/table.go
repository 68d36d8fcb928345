package export

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"dorfbook/simparse/pkg/history"
)

// TableExporter writes an aligned, human-readable table.
type TableExporter struct{}

// NewTableExporter creates a new table exporter.
func NewTableExporter() *TableExporter {
	return &TableExporter{}
}

// Export writes a header and one line per record.
func (e *TableExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TIME\tORIGIN\tSOURCE\tRESULT\tRULES\tDETAIL")
	for _, r := range records {
		detail := fmt.Sprintf("%d binds", r.Binds)
		if r.Failed() {
			detail = fmt.Sprintf("line %d: %s", r.ErrorLine, r.ErrorMessage)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RecordedAt.Local().Format(time.DateTime),
			r.Origin, r.Source, r.Result, r.Rules, detail)
	}

	if err := tw.Flush(); err != nil {
		return history.NewExportError("table", len(records), err)
	}
	return nil
}
