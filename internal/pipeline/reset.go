package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
)

// ResetState describes what happened to one store during a reset.
type ResetState string

const (
	ResetCleared ResetState = "cleared"
	ResetEmpty   ResetState = "already empty"
	ResetAbsent  ResetState = "absent"
	ResetFailed  ResetState = "failed"
)

// ResetOutcome is the per-store result of a reset. Removed is only
// meaningful for ResetCleared.
type ResetOutcome struct {
	State   ResetState
	Removed int64
	Err     error
}

// ResetReport holds both per-store outcomes of one administrative reset.
type ResetReport struct {
	Relational ResetOutcome
	Vector     ResetOutcome
}

// Failed reports whether either store's reset errored.
func (r ResetReport) Failed() bool {
	return r.Relational.State == ResetFailed || r.Vector.State == ResetFailed
}

// Reset empties both stores. Each store is reset independently and reports
// its own outcome, so a failure in one never aborts the other.
func Reset(ctx context.Context, articles repository.ArticleRepository, vectors vectorstore.Storage, logger *slog.Logger) ResetReport {
	if logger == nil {
		logger = slog.Default()
	}
	var report ResetReport

	report.Relational = resetRelational(ctx, articles)
	logger.Info("pipeline.reset.relational",
		"state", string(report.Relational.State),
		"removed", report.Relational.Removed,
		"error", report.Relational.Err)

	report.Vector = resetVector(ctx, vectors)
	logger.Info("pipeline.reset.vector",
		"state", string(report.Vector.State),
		"removed", report.Vector.Removed,
		"error", report.Vector.Err)

	return report
}

func resetRelational(ctx context.Context, articles repository.ArticleRepository) ResetOutcome {
	n, err := articles.Clear(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return ResetOutcome{State: ResetAbsent}
	case err != nil:
		return ResetOutcome{State: ResetFailed, Err: err}
	case n == 0:
		return ResetOutcome{State: ResetEmpty}
	default:
		return ResetOutcome{State: ResetCleared, Removed: n}
	}
}

func resetVector(ctx context.Context, vectors vectorstore.Storage) ResetOutcome {
	count, err := vectors.Count(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return ResetOutcome{State: ResetAbsent}
	}
	if err != nil {
		return ResetOutcome{State: ResetFailed, Err: err}
	}
	if err := vectors.Clear(ctx); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ResetOutcome{State: ResetAbsent}
		}
		return ResetOutcome{State: ResetFailed, Err: err}
	}
	if count == 0 {
		return ResetOutcome{State: ResetEmpty}
	}
	return ResetOutcome{State: ResetCleared, Removed: int64(count)}
}
