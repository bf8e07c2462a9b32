package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
)

func newTestRepo(t *testing.T) ArticleRepository {
	t.Helper()
	store, err := Open(context.Background(), common.DatabaseConfig{
		Driver: "sqlite",
		DSN:    ":memory:",
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(nil) })
	return NewArticleRepository(store, slog.Default())
}

func qty(v float64) *float64 { return &v }

func TestInsertAndSearchSubstring(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Insert(ctx, []entity.Record{
		{Designation: "Éclairage de chantier", Unit: "u", UnitPrice: 45.5, Quantity: qty(3)},
		{Designation: "Béton C25/30", Unit: "m3", UnitPrice: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := repo.SearchSubstring(ctx, "chantier")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Éclairage de chantier", hits[0].Designation)
	assert.Equal(t, 45.5, hits[0].UnitPrice)
	require.NotNil(t, hits[0].Quantity)
	assert.Equal(t, 3.0, *hits[0].Quantity)
	assert.Nil(t, hits[0].TotalPrice)

	// case-insensitive
	hits, err = repo.SearchSubstring(ctx, "béton C25")
	require.NoError(t, err)
	if assert.Len(t, hits, 1) {
		assert.Equal(t, "Béton C25/30", hits[0].Designation)
	}
}

func TestInsertIsAppendOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := entity.Record{Designation: "Coffrage bois", Unit: "m2", UnitPrice: 35}
	_, err := repo.Insert(ctx, []entity.Record{rec})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, []entity.Record{rec})
	require.NoError(t, err)

	// duplicates are kept, not merged
	hits, err := repo.SearchSubstring(ctx, "Coffrage")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClearReportsState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// table does not exist yet
	_, err := repo.Clear(ctx)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = repo.Insert(ctx, []entity.Record{
		{Designation: "Grue mobile", Unit: "j", UnitPrice: 800},
	})
	require.NoError(t, err)

	n, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))
}
