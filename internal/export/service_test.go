package export

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/query"
	"github.com/theodu78/NLPrice-app/internal/repository"
)

func qty(v float64) *float64 { return &v }

func TestRecordsXLSX(t *testing.T) {
	svc := NewService(nil)

	data, err := svc.RecordsXLSX([]entity.Record{
		{Designation: "Béton C25/30", Unit: "m3", Quantity: qty(10), UnitPrice: 120.5, TotalPrice: qty(1205)},
		{Designation: "Acier HA500", Unit: "kg", UnitPrice: 1.8},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	head, err := f.GetCellValue("Articles", "A1")
	require.NoError(t, err)
	assert.Equal(t, "designation", head)

	v, err := f.GetCellValue("Articles", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Béton C25/30", v)

	// missing quantity stays an empty cell
	v, err = f.GetCellValue("Articles", "C3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestStoredRecordsXLSXWithFilter(t *testing.T) {
	ctx := context.Background()
	store, err := repository.Open(ctx, common.DatabaseConfig{
		Driver: "sqlite",
		DSN:    ":memory:",
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(nil) })

	articles := repository.NewArticleRepository(store, slog.Default())
	_, err = articles.Insert(ctx, []entity.Record{
		{Designation: "Béton C25/30", Unit: "m3", UnitPrice: 120.5},
		{Designation: "Acier HA500", Unit: "kg", UnitPrice: 1.8},
	})
	require.NoError(t, err)

	data, err := NewService(nil).StoredRecordsXLSX(ctx, articles, "acier")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Articles", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Acier HA500", v)

	// the filter excluded the other row
	v, err = f.GetCellValue("Articles", "A3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestResultsXLSX(t *testing.T) {
	svc := NewService(nil)

	data, err := svc.ResultsXLSX([]query.Result{
		{Source: query.SourceRelational, Score: 1.0, Record: entity.Record{Designation: "Béton C25/30", Unit: "m3", UnitPrice: 120.5}},
		{Source: query.SourceVector, Score: 0.87, Record: entity.Record{Designation: "Coffrage bois", Unit: "m2", UnitPrice: 35}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	src, err := f.GetCellValue("Results", "A2")
	require.NoError(t, err)
	assert.Equal(t, "relational", src)

	src, err = f.GetCellValue("Results", "A3")
	require.NoError(t, err)
	assert.Equal(t, "vector", src)

	v, err := f.GetCellValue("Results", "C3")
	require.NoError(t, err)
	assert.Equal(t, "Coffrage bois", v)
}
