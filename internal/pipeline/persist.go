package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/embedding"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
)

// StoreReport carries the per-backend outcome of one persistence pass. The
// two backends are written independently, so one can succeed while the other
// fails.
type StoreReport struct {
	RelationalInserted int
	RelationalErr      error
	VectorUpserted     int
	VectorErr          error
}

// Err folds the per-backend outcomes into a single error, nil when both
// backends accepted every record.
func (r StoreReport) Err() error {
	if r.RelationalErr == nil && r.VectorErr == nil {
		return nil
	}
	var parts []string
	if r.RelationalErr != nil {
		parts = append(parts, fmt.Sprintf("relational: %v", r.RelationalErr))
	}
	if r.VectorErr != nil {
		parts = append(parts, fmt.Sprintf("vector: %v", r.VectorErr))
	}
	return common.NewAppError("STORE_WRITE", strings.Join(parts, "; "), common.ErrStoreWrite)
}

// Persister writes records to the relational store and the vector store.
type Persister struct {
	articles repository.ArticleRepository
	embedder embedding.Embedder
	vectors  vectorstore.Storage
	logger   *slog.Logger
}

func NewPersister(articles repository.ArticleRepository, embedder embedding.Embedder, vectors vectorstore.Storage, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		articles: articles,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}
}

// Store writes recs to both backends. Inserts are append-only: re-storing
// the same rows yields duplicates rather than updates. Each record gets a
// fresh uuid as its vector id so repeated runs never overwrite prior points.
func (p *Persister) Store(ctx context.Context, recs []entity.Record) StoreReport {
	var report StoreReport

	n, err := p.articles.Insert(ctx, recs)
	report.RelationalInserted = n
	report.RelationalErr = err
	if err != nil {
		p.logger.Error("pipeline.store.relational_failed", "error", err)
	}

	if err := p.vectors.Init(ctx, p.embedder.Dimension()); err != nil {
		report.VectorErr = fmt.Errorf("init index: %w", err)
		p.logger.Error("pipeline.store.vector_init_failed", "error", err)
		return report
	}
	// A failure for one record skips that record only; the rest of the
	// batch is still attempted.
	var vectorErrs []error
	for _, rec := range recs {
		vector, err := p.embedder.Embed(ctx, rec.Designation)
		if err != nil {
			vectorErrs = append(vectorErrs, fmt.Errorf("embed %q: %w", rec.Designation, err))
			p.logger.Error("pipeline.store.embed_failed", "designation", rec.Designation, "error", err)
			continue
		}
		point := vectorstore.Point{ID: uuid.NewString(), Vector: vector, Record: rec}
		if err := p.vectors.Upsert(ctx, []vectorstore.Point{point}); err != nil {
			vectorErrs = append(vectorErrs, fmt.Errorf("upsert %q: %w", rec.Designation, err))
			p.logger.Error("pipeline.store.upsert_failed", "designation", rec.Designation, "error", err)
			continue
		}
		report.VectorUpserted++
	}
	report.VectorErr = errors.Join(vectorErrs...)
	return report
}
