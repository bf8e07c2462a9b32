// Package memory is an in-memory vector store using brute-force cosine
// similarity. It backs tests and runs without a Qdrant instance.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
)

type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    []vectorstore.Point
	byID      map[string]int
}

func NewStorage() *Storage { return &Storage{} }

// Init creates the index if it does not exist yet. An existing index is
// left untouched unless the requested dimension disagrees with it.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byID != nil {
		if s.dimension != dimension {
			return errors.New("index exists with different dimension")
		}
		return nil
	}
	s.dimension = dimension
	s.byID = make(map[string]int)
	return nil
}

func (s *Storage) Upsert(_ context.Context, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byID == nil {
		return errors.New("store not initialized")
	}
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		if i, ok := s.byID[p.ID]; ok {
			s.points[i] = p
			continue
		}
		s.byID[p.ID] = len(s.points)
		s.points = append(s.points, p)
	}
	return nil
}

func (s *Storage) Query(_ context.Context, vector []float64, topK int) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.byID == nil {
		return nil, common.ErrNotFound
	}
	if topK <= 0 {
		topK = 5
	}

	matches := make([]vectorstore.Match, 0, len(s.points))
	for _, p := range s.points {
		matches = append(matches, vectorstore.Match{
			Record: p.Record,
			Score:  cosine(p.Vector, vector),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.byID == nil {
		return 0, common.ErrNotFound
	}
	return len(s.points), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byID == nil {
		return common.ErrNotFound
	}
	s.points = nil
	s.byID = nil
	return nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
