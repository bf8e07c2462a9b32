package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
	"github.com/theodu78/NLPrice-app/internal/vectorstore/memory"
)

type fakeArticles struct {
	hits []entity.Record
	err  error
}

func (f *fakeArticles) EnsureSchema(ctx context.Context) error { return nil }
func (f *fakeArticles) Insert(ctx context.Context, recs []entity.Record) (int, error) {
	return len(recs), nil
}
func (f *fakeArticles) SearchSubstring(ctx context.Context, q string) ([]entity.Record, error) {
	return f.hits, f.err
}
func (f *fakeArticles) Count(ctx context.Context) (int, error) { return len(f.hits), nil }
func (f *fakeArticles) Clear(ctx context.Context) (int64, error) { return 0, nil }

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Dimension() int { return len(f.vector) }
func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vector, f.err
}

func rec(designation, unit string, price float64) entity.Record {
	return entity.Record{Designation: designation, Unit: unit, UnitPrice: price}
}

func TestMergeKeepsBothSources(t *testing.T) {
	relational := []entity.Record{
		rec("béton C25/30", "m3", 120),
		rec("acier HA500", "kg", 1.8),
	}
	vector := []vectorstore.Match{
		{Record: rec("coffrage bois", "m2", 35), Score: 0.82},
		{Record: rec("treillis soudé", "m2", 4.2), Score: 0.91},
		{Record: rec("enduit ciment", "m2", 18), Score: 0.77},
	}

	merged := Merge(relational, vector)
	require.Len(t, merged, 5)

	assert.Equal(t, SourceRelational, merged[0].Source)
	assert.Equal(t, SourceRelational, merged[1].Source)
	assert.Equal(t, "béton C25/30", merged[0].Record.Designation)
	assert.Equal(t, 1.0, merged[0].Score)
	assert.Equal(t, 1.0, merged[1].Score)

	// vector hits come after the relational ones, best similarity first
	assert.Equal(t, SourceVector, merged[2].Source)
	assert.Equal(t, "treillis soudé", merged[2].Record.Designation)
	assert.InDelta(t, 0.91, merged[2].Score, 1e-9)
	assert.Equal(t, "coffrage bois", merged[3].Record.Designation)
	assert.Equal(t, "enduit ciment", merged[4].Record.Designation)
}

func TestMergeDeduplicatesExactMatches(t *testing.T) {
	relational := []entity.Record{rec("béton C25/30", "m3", 120)}
	vector := []vectorstore.Match{
		{Record: rec("béton C25/30", "m3", 120), Score: 0.95},
		{Record: rec("béton C25/30", "m3", 135), Score: 0.90},
	}

	merged := Merge(relational, vector)
	require.Len(t, merged, 2)

	// the duplicate keeps its relational entry
	assert.Equal(t, SourceRelational, merged[0].Source)
	assert.Equal(t, 1.0, merged[0].Score)

	// a different unit price is not a duplicate
	assert.Equal(t, SourceVector, merged[1].Source)
	assert.Equal(t, 135.0, merged[1].Record.UnitPrice)
}

func TestMergeEmptySources(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	onlyVec := Merge(nil, []vectorstore.Match{{Record: rec("sable", "t", 28), Score: 0.5}})
	require.Len(t, onlyVec, 1)
	assert.Equal(t, SourceVector, onlyVec[0].Source)
}

func TestSearchReconcilesBothBranches(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStorage()
	require.NoError(t, store.Init(ctx, 3))
	require.NoError(t, store.Upsert(ctx, []vectorstore.Point{
		{ID: "a", Vector: []float64{1, 0, 0}, Record: rec("gravier 0/20", "t", 25)},
		{ID: "b", Vector: []float64{0, 1, 0}, Record: rec("sable fin", "t", 30)},
	}))

	engine := NewEngine(
		&fakeArticles{hits: []entity.Record{rec("gravier concassé", "t", 27)}},
		&fakeEmbedder{vector: []float64{1, 0, 0}},
		store,
		nil,
	)

	results, err := engine.Search(ctx, "gravier", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, SourceRelational, results[0].Source)
	assert.Equal(t, "gravier concassé", results[0].Record.Designation)
	assert.Equal(t, SourceVector, results[1].Source)
	assert.Equal(t, "gravier 0/20", results[1].Record.Designation)
}

func TestSearchSurfacesBranchFailure(t *testing.T) {
	engine := NewEngine(
		&fakeArticles{err: assert.AnError},
		&fakeEmbedder{vector: []float64{1}},
		memory.NewStorage(),
		nil,
	)

	_, err := engine.Search(context.Background(), "acier", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
