package extract

import (
	"fmt"
	"log/slog"

	"github.com/theodu78/NLPrice-app/internal/schema"
)

// Reshape concatenates all raw tables into one working table and reconciles
// its width against the expected raw column list. When the working table is
// at least as wide as expected it is truncated to the expected count and the
// canonical names are assigned positionally (leftmost columns win). A
// narrower table is a recoverable-but-degraded outcome: placeholder names
// are assigned and a diagnostic is surfaced instead of failing. No cell
// content is validated here; that is the coercion stage's job.
func Reshape(tables []RawTable, logger *slog.Logger) Table {
	if logger == nil {
		logger = slog.Default()
	}

	var rows [][]string
	width := 0
	for _, t := range tables {
		for _, row := range t.Rows {
			if len(row) > width {
				width = len(row)
			}
			rows = append(rows, row)
		}
	}

	expected := schema.RawColumns
	if len(rows) == 0 {
		return Table{Columns: expected}
	}

	if width >= len(expected) {
		out := make([][]string, len(rows))
		for i, row := range rows {
			out[i] = padRow(row, len(expected))[:len(expected)]
		}
		return Table{Columns: expected, Rows: out}
	}

	diag := fmt.Sprintf("column length mismatch: expected %d, got %d; using default column names", len(expected), width)
	logger.Warn("extract.reshape.degraded", "expected", len(expected), "got", width)

	cols := make([]string, width)
	for i := range cols {
		cols[i] = fmt.Sprintf("col_%d", i+1)
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = padRow(row, width)
	}
	return Table{Columns: cols, Rows: out, Degraded: true, Diagnostic: diag}
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}
