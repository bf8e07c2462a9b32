package pipeline

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/extract"
	"github.com/theodu78/NLPrice-app/internal/llm"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore/memory"
)

type fakeExtractor struct {
	tables []extract.RawTable
	err    error
}

func (f *fakeExtractor) ExtractTables(ctx context.Context, pdfPath string) ([]extract.RawTable, error) {
	return f.tables, f.err
}

type fakeNormalizer struct {
	response string
	err      error
	gotCSV   string
}

func (f *fakeNormalizer) NormalizeTable(ctx context.Context, tableCSV string) (string, error) {
	f.gotCSV = tableCSV
	return f.response, f.err
}

// hashEmbedder produces a deterministic vector per input so similarity
// search behaves stably in tests.
type hashEmbedder struct{ dim int }

func (h *hashEmbedder) Dimension() int { return h.dim }
func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	v := make([]float64, h.dim)
	for i, r := range text {
		v[i%h.dim] += float64(r)
	}
	return v, nil
}

func newTestRepo(t *testing.T) repository.ArticleRepository {
	t.Helper()
	store, err := repository.Open(context.Background(), common.DatabaseConfig{
		Driver: "sqlite",
		DSN:    ":memory:",
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(nil) })
	return repository.NewArticleRepository(store, slog.Default())
}

func TestProcessPDFEndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	vectors := memory.NewStorage()
	embedder := &hashEmbedder{dim: 8}

	extractor := &fakeExtractor{tables: []extract.RawTable{{Rows: [][]string{
		{"Article", "Prix Unitaire", "Quantités", "Total"},
		{"Béton C25/30", "120,50", "10", "1205,00"},
		{"Acier HA500", "1,80", "500", "900,00"},
		{"Sous-total", "", "", ""},
	}}}}
	normalizer := &fakeNormalizer{response: `Here is the structured table:
designation,unit,quantity,unit_price,total_price
Béton C25/30,m3,10,120.50,1205.00
Acier HA500,kg,500,1.80,900.00
garbage line without any price`}

	persister := NewPersister(repo, embedder, vectors, slog.Default())
	proc := NewProcessor(extractor, normalizer, llm.StrategyLineFilter, persister, slog.Default())

	report, err := proc.ProcessPDF(ctx, "devis.pdf")
	require.NoError(t, err)

	// decimal commas were unified before prompting
	assert.Contains(t, normalizer.gotCSV, "120.50")
	assert.NotContains(t, normalizer.gotCSV, "120,50")

	require.Len(t, report.Records, 2)
	assert.Equal(t, "Béton C25/30", report.Records[0].Designation)
	assert.Equal(t, 120.50, report.Records[0].UnitPrice)
	assert.Equal(t, 2, report.Store.RelationalInserted)
	assert.Equal(t, 2, report.Store.VectorUpserted)

	hits, err := repo.SearchSubstring(ctx, "béton")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Béton C25/30", hits[0].Designation)

	count, err := vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

type pickyEmbedder struct {
	hashEmbedder
	failOn string
}

func (p *pickyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == p.failOn {
		return nil, assert.AnError
	}
	return p.hashEmbedder.Embed(ctx, text)
}

func TestStoreSkipsOnlyTheFailedRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	vectors := memory.NewStorage()
	embedder := &pickyEmbedder{hashEmbedder: hashEmbedder{dim: 4}, failOn: "Acier HA500"}

	persister := NewPersister(repo, embedder, vectors, slog.Default())
	report := persister.Store(ctx, []entity.Record{
		{Designation: "Béton C25/30", Unit: "m3", UnitPrice: 120.5},
		{Designation: "Acier HA500", Unit: "kg", UnitPrice: 1.8},
		{Designation: "Coffrage bois", Unit: "m2", UnitPrice: 35},
	})

	// relational side holds the whole batch
	assert.Equal(t, 3, report.RelationalInserted)
	require.NoError(t, report.RelationalErr)

	// the record after the failed one was still attempted and stored
	assert.Equal(t, 2, report.VectorUpserted)
	require.Error(t, report.VectorErr)
	assert.ErrorIs(t, report.VectorErr, assert.AnError)
	assert.Contains(t, report.VectorErr.Error(), "Acier HA500")

	count, err := vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessPDFNoTables(t *testing.T) {
	persister := NewPersister(newTestRepo(t), &hashEmbedder{dim: 4}, memory.NewStorage(), slog.Default())
	proc := NewProcessor(&fakeExtractor{}, &fakeNormalizer{}, llm.StrategyLineFilter, persister, slog.Default())

	_, err := proc.ProcessPDF(context.Background(), "empty.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoTables)
}

func TestProcessPDFReportsDegradedReshape(t *testing.T) {
	// two columns where four are expected
	extractor := &fakeExtractor{tables: []extract.RawTable{{Rows: [][]string{
		{"Béton C25/30", "120.50"},
		{"Acier HA500", "1.80"},
	}}}}
	normalizer := &fakeNormalizer{response: "Béton C25/30,m3,10,120.50,1205.00"}

	persister := NewPersister(newTestRepo(t), &hashEmbedder{dim: 4}, memory.NewStorage(), slog.Default())
	proc := NewProcessor(extractor, normalizer, llm.StrategyLineFilter, persister, slog.Default())

	report, err := proc.ProcessPDF(context.Background(), "devis.pdf")
	require.NoError(t, err)

	assert.True(t, report.Degraded)
	assert.Contains(t, report.Diagnostic, "column length mismatch")
	require.Len(t, report.Records, 1)
}

func TestProcessPDFUnparseableResponse(t *testing.T) {
	extractor := &fakeExtractor{tables: []extract.RawTable{{Rows: [][]string{
		{"Béton", "120", "10", "1200"},
	}}}}
	normalizer := &fakeNormalizer{response: "I could not find any table in this document."}

	persister := NewPersister(newTestRepo(t), &hashEmbedder{dim: 4}, memory.NewStorage(), slog.Default())
	proc := NewProcessor(extractor, normalizer, llm.StrategyLineFilter, persister, slog.Default())

	_, err := proc.ProcessPDF(context.Background(), "devis.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFormat)

	var fe *common.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Raw, "could not find any table")
}

func TestStoreCSVAppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	persister := NewPersister(repo, &hashEmbedder{dim: 4}, memory.NewStorage(), slog.Default())
	proc := NewProcessor(nil, nil, llm.StrategyLineFilter, persister, slog.Default())

	payload := "designation,unit,quantity,unit_price,total_price\nBéton C25/30,m3,10,120.50,1205.00\n"
	for i := 0; i < 2; i++ {
		report, err := proc.StoreCSV(ctx, payload)
		require.NoError(t, err)
		require.Len(t, report.Records, 1)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreCSVNoUsableRecords(t *testing.T) {
	persister := NewPersister(newTestRepo(t), &hashEmbedder{dim: 4}, memory.NewStorage(), slog.Default())
	proc := NewProcessor(nil, nil, llm.StrategyLineFilter, persister, slog.Default())

	_, err := proc.StoreCSV(context.Background(), "designation,unit,quantity,unit_price,total_price\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
