// Package embedding converts designation text into fixed-dimension vectors
// via an external embedding service.
package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
// Dimension must match the vector store's configured dimension.
type Embedder interface {
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}
