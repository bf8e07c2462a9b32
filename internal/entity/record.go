package entity

import "strconv"

// Record is a validated, schema-conformant price line ready for persistence.
// Quantity and TotalPrice are nil when the source document did not carry them;
// a missing value is never conflated with a literal zero.
type Record struct {
	ID          string   `json:"id,omitempty"`
	Designation string   `json:"designation"`
	Unit        string   `json:"unit"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   float64  `json:"unit_price"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
}

// Valid reports whether the record may be persisted: a non-empty designation
// and a finite unit price are the only hard requirements.
func (r Record) Valid() bool {
	return r.Designation != "" && !isNaNOrInf(r.UnitPrice)
}

// FormatPrice renders a numeric field in the canonical locale-independent
// form: '.' decimal separator, no currency symbol, no grouping.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isNaNOrInf(f float64) bool {
	return f != f || f > 1e308 || f < -1e308
}
