package llm

import "context"

// TableNormalizer is the boundary to the external text-generation service:
// a fallible text-to-text transform that takes the raw working table as
// delimited text and returns model-cleaned text. The output is never trusted
// as structured until it has been through the parser and coercion stages.
//
// Given identical input the transform leans deterministic (temperature 0) but
// byte-identical replies across calls are not guaranteed; callers must not
// assume exact reproducibility.
type TableNormalizer interface {
	NormalizeTable(ctx context.Context, tableCSV string) (string, error)
}
