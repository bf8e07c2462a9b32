// Package vectorstore persists record embeddings and supports similarity
// search over them.
package vectorstore

import (
	"context"

	"github.com/theodu78/NLPrice-app/internal/entity"
)

// Point is one vector entry keyed by a unique id, with the full record
// attached as metadata. Ids must stay unique across repeated runs so two
// distinct records sharing a designation never silently overwrite each other.
type Point struct {
	ID     string
	Vector []float64
	Record entity.Record
}

// Match is one similarity hit. Score is in the store's model-defined range
// (cosine similarity here) and is not comparable to relational match ranks.
type Match struct {
	Record entity.Record
	Score  float64
}

// Storage persists vectors and supports nearest-neighbor search.
// Count returns common.ErrNotFound when the index does not exist; Clear
// drops the index entirely.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []Point) error
	Query(ctx context.Context, vector []float64, topK int) ([]Match, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
