// Package records turns parsed delimited text into canonical records. It is
// the only stage that trusts field content: everything upstream is treated
// as noisy text.
package records

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/schema"
)

// Dropped records one row the coercion stage refused and why. Drops are
// per-row diagnostics, never a failure of the whole batch.
type Dropped struct {
	Row    []string
	Reason string
}

// Result is the outcome of coercing one parsed payload.
type Result struct {
	Records []entity.Record
	Dropped []Dropped
}

// Coerce decodes the delimited payload into canonical records. The payload
// is assumed to carry a header row matching the canonical field names; when
// the model omitted it, rows are mapped positionally. Quoted fields may
// contain the delimiter and escaped quotes. A row whose field count does not
// match the header fails that row only.
//
// Numeric fields that fail to parse become missing, not zero; the
// missing-vs-zero distinction drives the drop rules below. Coercion is
// idempotent: feeding its own canonical output back through produces the
// identical record set.
func Coerce(payload string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	r := csv.NewReader(strings.NewReader(payload))
	r.FieldsPerRecord = -1

	var res Result
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Dropped = append(res.Dropped, Dropped{Reason: "csv parse: " + err.Error()})
			continue
		}
		if first {
			first = false
			if schema.IsHeader(row) {
				continue
			}
		}

		rec, reason := coerceRow(row)
		if reason != "" {
			logger.Debug("records.coerce.dropped", "reason", reason, "row", strings.Join(row, ","))
			res.Dropped = append(res.Dropped, Dropped{Row: row, Reason: reason})
			continue
		}
		res.Records = append(res.Records, rec)
	}

	logger.Info("records.coerce.done", "kept", len(res.Records), "dropped", len(res.Dropped))
	return res
}

func coerceRow(row []string) (entity.Record, string) {
	if len(row) != len(schema.Fields) {
		return entity.Record{}, "field count mismatch"
	}

	designation := strings.TrimSpace(row[0])
	if designation == "" {
		return entity.Record{}, "missing designation"
	}

	unit := strings.TrimSpace(row[1])
	if unit == "" {
		unit = schema.UnitPlaceholder
	}

	quantity := ParseNumber(row[2])
	unitPrice := ParseNumber(row[3])
	totalPrice := ParseNumber(row[4])

	if unitPrice == nil {
		return entity.Record{}, "missing or unparseable unit_price"
	}

	// A free item keeps its zero unit price as long as the total says the
	// row carried real data; both prices at literal zero marks a garbage row.
	if *unitPrice == 0 && totalPrice != nil && *totalPrice == 0 {
		return entity.Record{}, "unit_price and total_price both zero"
	}

	return entity.Record{
		Designation: designation,
		Unit:        unit,
		Quantity:    quantity,
		UnitPrice:   *unitPrice,
		TotalPrice:  totalPrice,
	}, ""
}

// ParseNumber converts a locale-formatted numeric string to a canonical
// float. Currency symbols, grouping separators and stray characters are
// stripped; a decimal comma becomes a decimal point. nil means missing.
func ParseNumber(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' || r == ',' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return nil
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// dots are grouping, comma is the decimal mark
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasDot:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ToCSV renders records back into canonical delimited text, header first.
// Missing optional numerics become empty cells.
func ToCSV(recs []entity.Record) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(schema.ColumnNames())
	for _, r := range recs {
		quantity, total := "", ""
		if r.Quantity != nil {
			quantity = entity.FormatPrice(*r.Quantity)
		}
		if r.TotalPrice != nil {
			total = entity.FormatPrice(*r.TotalPrice)
		}
		_ = w.Write([]string{
			r.Designation,
			r.Unit,
			quantity,
			entity.FormatPrice(r.UnitPrice),
			total,
		})
	}
	w.Flush()
	return b.String()
}
