package llm

import (
	"strings"

	"github.com/theodu78/NLPrice-app/internal/common"
)

// Strategy selects how the CSV payload is located inside model output.
// Exactly one strategy is active per engine instance; the two disagree on
// payload boundaries and must never run together.
type Strategy string

const (
	StrategyLineFilter Strategy = "line-filter"
	StrategySentinel   Strategy = "sentinel"

	// SentinelMarker wraps the payload when the sentinel strategy is used.
	SentinelMarker = "^"
)

// SkippedLine records a line the parser rejected and why. Skipped lines are
// diagnostics for the caller, never silently discarded.
type SkippedLine struct {
	Line   string
	Reason string
}

// ParseResponse recovers the delimited payload from raw model text using the
// given strategy. Zero usable payload is a hard FormatError, not an empty
// result: downstream coercion cannot tell "legitimately no data" from
// "parser found nothing".
func ParseResponse(strategy Strategy, text string) (string, []SkippedLine, error) {
	switch strategy {
	case StrategySentinel:
		payload, err := ExtractSentinelPayload(text, SentinelMarker)
		return payload, nil, err
	default:
		return FilterCSVLines(text)
	}
}

// FilterCSVLines keeps only the lines of the response that look like
// delimited data: blanks, code-fence markers and explanatory notes are
// dropped, and any remaining line without the field delimiter is reported as
// skipped.
func FilterCSVLines(text string) (string, []SkippedLine, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var kept []string
	var skipped []SkippedLine
	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			skipped = append(skipped, SkippedLine{Line: line, Reason: "blank line"})
		case strings.HasPrefix(line, "```"):
			skipped = append(skipped, SkippedLine{Line: line, Reason: "code fence"})
		case strings.HasPrefix(line, "Note:"):
			skipped = append(skipped, SkippedLine{Line: line, Reason: "explanatory note"})
		case !strings.Contains(line, ","):
			skipped = append(skipped, SkippedLine{Line: line, Reason: "no field delimiter"})
		default:
			kept = append(kept, line)
		}
	}

	if len(kept) == 0 {
		return "", skipped, common.NewFormatError("no delimited lines in model output", text)
	}
	return strings.Join(kept, "\n"), skipped, nil
}

// ExtractSentinelPayload returns the substring strictly between the first
// and last occurrence of marker. Both markers must be present.
func ExtractSentinelPayload(text, marker string) (string, error) {
	first := strings.Index(text, marker)
	if first < 0 {
		return "", common.NewFormatError("opening sentinel not found", text)
	}
	last := strings.LastIndex(text, marker)
	if last == first {
		return "", common.NewFormatError("closing sentinel not found", text)
	}
	payload := text[first+len(marker) : last]
	if strings.TrimSpace(payload) == "" {
		return "", common.NewFormatError("empty sentinel payload", text)
	}
	return payload, nil
}
