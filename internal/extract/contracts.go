package extract

import (
	"context"
	"strings"
)

// RawTable is one table as returned by the extraction service: ordered rows
// of cell text, column count free to vary row-to-row.
type RawTable struct {
	Rows [][]string `json:"rows"`
}

// Table is the fixed-width working table produced by the adapter.
type Table struct {
	Columns []string
	Rows    [][]string

	// Degraded is set when the raw output had fewer columns than expected
	// and placeholder column names were assigned.
	Degraded   bool
	Diagnostic string
}

// Empty reports whether the table carries no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ToCSV renders the table as delimited text, header first. Cells containing
// the delimiter or quotes are quoted per standard CSV rules.
func (t Table) ToCSV() string {
	var b strings.Builder
	writeRow(&b, t.Columns)
	for _, row := range t.Rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(cell, ",\"\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(cell)
		}
	}
	b.WriteByte('\n')
}

// TableExtractor is the boundary to the external PDF table-extraction
// collaborator. An empty result set means "no tables found" and is not an
// error from the core's perspective.
type TableExtractor interface {
	ExtractTables(ctx context.Context, pdfPath string) ([]RawTable, error)
}
