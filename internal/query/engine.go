// Package query reconciles results from the relational store and the vector
// store into one ordered, source-labeled answer list.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/theodu78/NLPrice-app/internal/embedding"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
)

// Source tags which backend produced a result.
type Source string

const (
	SourceRelational Source = "relational"
	SourceVector     Source = "vector"
)

// Result is one reconciled hit. The two sources score on incompatible
// scales, so Score is only meaningful together with Source: relational hits
// are exact substring matches projected to 1.0, vector hits carry their
// cosine similarity.
type Result struct {
	Source Source
	Record entity.Record
	Score  float64
}

// Engine runs both query branches and merges their results.
type Engine struct {
	articles repository.ArticleRepository
	embedder embedding.Embedder
	vectors  vectorstore.Storage
	logger   *slog.Logger
}

func NewEngine(articles repository.ArticleRepository, embedder embedding.Embedder, vectors vectorstore.Storage, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		articles: articles,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}
}

// Search fans the free-text question out to both backends and reconciles the
// hits. topK bounds the vector branch only; the relational branch returns
// every substring match. A failing branch surfaces immediately instead of
// being silently dropped.
func (e *Engine) Search(ctx context.Context, question string, topK int) ([]Result, error) {
	start := time.Now()
	e.logger.Info("query.search.start", "question", question, "top_k", topK)

	relHits, err := e.articles.SearchSubstring(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("relational branch: %w", err)
	}

	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	vecHits, err := e.vectors.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector branch: %w", err)
	}

	merged := Merge(relHits, vecHits)
	e.logger.Info("query.search.ok",
		"relational_hits", len(relHits),
		"vector_hits", len(vecHits),
		"merged", len(merged),
		"elapsed_ms", time.Since(start).Milliseconds())
	return merged, nil
}

// Merge projects both result sets onto one explicit scale: relational hits
// are high-confidence exact matches at score 1.0 and sort first in store
// order; vector hits follow, descending by similarity. Exact duplicates
// (same designation, unit and unit price) keep their highest-priority entry.
// Neither source is ever dropped wholesale.
func Merge(relational []entity.Record, vector []vectorstore.Match) []Result {
	out := make([]Result, 0, len(relational)+len(vector))
	seen := make(map[string]bool, len(relational)+len(vector))

	for _, rec := range relational {
		key := dedupeKey(rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Result{Source: SourceRelational, Record: rec, Score: 1.0})
	}

	sorted := make([]vectorstore.Match, len(vector))
	copy(sorted, vector)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	for _, m := range sorted {
		key := dedupeKey(m.Record)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Result{Source: SourceVector, Record: m.Record, Score: m.Score})
	}
	return out
}

func dedupeKey(rec entity.Record) string {
	return fmt.Sprintf("%s|%s|%s", rec.Designation, rec.Unit, entity.FormatPrice(rec.UnitPrice))
}
