package llm

import (
	"strings"

	"github.com/theodu78/NLPrice-app/internal/schema"
)

// BuildSystemPrompt composes the fixed system instruction for the
// normalization call.
func BuildSystemPrompt() string {
	return "You are an assistant that structures data extracted from price quotes."
}

// BuildUserPrompt packages the rule set and the raw table text. The column
// list comes from the shared schema declaration so the prompt can never
// drift from what the coercion stage expects.
func BuildUserPrompt(tableCSV string) string {
	header := schema.Header()

	rules := []string{
		"Ignore prices marked as tax-inclusive (TTC).",
		"Ignore rows that only contain titles, subtitles, or are blank.",
		"Ignore rows that do not contain a price.",
		"Ignore rows that do not contain an item.",
		"Ignore any row that looks vague, off-topic, or carries no price.",
		"Convert all prices to a standard numeric format without currency symbols (for example 1234.56 instead of 1 234,56 €).",
		"Strip irrelevant characters such as grouping spaces or currency symbols.",
		"Make sure data rows contain coherent items and prices.",
		"Numbers must be cleanly separated from units and commas to avoid any confusion.",
		"Wrap in double quotes any item that itself contains quotes.",
		"Make sure every row stays on a single line; fields must never contain embedded newlines, or the CSV structure breaks.",
	}

	var b strings.Builder
	b.WriteString("Price quotes contain information about items, units, quantities, unit prices and total prices.\n\n")
	b.WriteString("The normalized data must follow this format:\n")
	b.WriteString(header)
	b.WriteString("\n\nRules to follow:\n")
	for _, r := range rules {
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("\nHere is the raw data to normalize:\n")
	b.WriteString(tableCSV)
	b.WriteString("\nReturn the normalized data as comma-separated columns: ")
	b.WriteString(header)
	b.WriteString(". Output pure CSV with no additional prose.")
	return b.String()
}

// UnifyDecimalSeparators rewrites decimal commas to dots in every cell before
// the table is sent out, so the generation service never sees locale noise
// colliding with the CSV delimiter.
func UnifyDecimalSeparators(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.ReplaceAll(cell, ",", ".")
		}
		out[i] = cells
	}
	return out
}
