package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodu78/NLPrice-app/internal/schema"
)

func TestReshapeTruncatesToExpectedColumns(t *testing.T) {
	tables := []RawTable{
		{Rows: [][]string{
			{"Béton C25/30", "120,50", "10", "1205,00", "extra", "noise"},
			{"Coffrage", "35,00", "4", "140,00", "x", "y"},
		}},
		{Rows: [][]string{
			{"Acier HA", "1,20", "500", "600,00", "z", "w"},
		}},
	}

	got := Reshape(tables, nil)

	require.Equal(t, schema.RawColumns, got.Columns)
	require.Len(t, got.Rows, 3)
	for _, row := range got.Rows {
		assert.Len(t, row, len(schema.RawColumns))
	}
	// leftmost columns win
	assert.Equal(t, []string{"Béton C25/30", "120,50", "10", "1205,00"}, got.Rows[0])
	assert.False(t, got.Degraded)
}

func TestReshapeRaggedRowsArePadded(t *testing.T) {
	tables := []RawTable{
		{Rows: [][]string{
			{"Ligne complète", "10,00", "2", "20,00"},
			{"Ligne courte", "5,00"},
		}},
	}

	got := Reshape(tables, nil)

	require.Equal(t, schema.RawColumns, got.Columns)
	assert.Equal(t, []string{"Ligne courte", "5,00", "", ""}, got.Rows[1])
}

func TestReshapeEmptyInputIsValidAndEmpty(t *testing.T) {
	got := Reshape(nil, nil)

	assert.Equal(t, schema.RawColumns, got.Columns)
	assert.True(t, got.Empty())
	assert.False(t, got.Degraded)

	got = Reshape([]RawTable{{}, {}}, nil)
	assert.True(t, got.Empty())
}

func TestReshapeNarrowTableDegrades(t *testing.T) {
	tables := []RawTable{
		{Rows: [][]string{
			{"Article seul", "10,00"},
		}},
	}

	got := Reshape(tables, nil)

	require.True(t, got.Degraded)
	assert.NotEmpty(t, got.Diagnostic)
	assert.Equal(t, []string{"col_1", "col_2"}, got.Columns)
	assert.Len(t, got.Rows, 1)
}

func TestTableToCSVQuotesDelimiters(t *testing.T) {
	tbl := Table{
		Columns: []string{"a", "b"},
		Rows: [][]string{
			{`tube "inox", courbe`, "12,50"},
		},
	}

	assert.Equal(t, "a,b\n\"tube \"\"inox\"\", courbe\",\"12,50\"\n", tbl.ToCSV())
}
