// Package schema is the single declaration of the canonical price-line shape.
// Both the normalization prompt and the coercion stage are built from it, so
// the column list cannot drift between the two.
package schema

import "strings"

// Field describes one canonical column.
type Field struct {
	Name     string
	Numeric  bool
	Required bool
}

// Fields is the canonical column list, in wire order.
var Fields = []Field{
	{Name: "designation", Required: true},
	{Name: "unit"},
	{Name: "quantity", Numeric: true},
	{Name: "unit_price", Numeric: true, Required: true},
	{Name: "total_price", Numeric: true},
}

// RawColumns are the column names assigned positionally to the raw
// extraction output before normalization (leftmost columns win).
var RawColumns = []string{"Article", "Prix Unitaire", "Quantités", "Total"}

// UnitPlaceholder marks a unit the pipeline could not recover.
const UnitPlaceholder = "?"

// ColumnNames returns the canonical column names in order.
func ColumnNames() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// Header returns the canonical CSV header line.
func Header() string {
	return strings.Join(ColumnNames(), ",")
}

// IsHeader reports whether a parsed CSV row is the canonical header.
// Comparison is case-insensitive and whitespace-tolerant because the
// generation service does not always echo the header verbatim.
func IsHeader(row []string) bool {
	if len(row) != len(Fields) {
		return false
	}
	for i, f := range Fields {
		if !strings.EqualFold(strings.TrimSpace(row[i]), f.Name) {
			return false
		}
	}
	return true
}

// RecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) for one
// canonical record, used to validate records before they reach either store.
func RecordJSONSchema() map[string]any {
	props := map[string]any{
		"designation": map[string]any{"type": "string", "minLength": 1},
		"unit":        map[string]any{"type": "string"},
		"quantity":    map[string]any{"type": "number"},
		"unit_price":  map[string]any{"type": "number"},
		"total_price": map[string]any{"type": "number"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"designation", "unit", "unit_price"},
	}
}
