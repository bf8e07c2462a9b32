// Package pipeline drives a price-quote PDF through extraction,
// normalization and dual-store persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/extract"
	"github.com/theodu78/NLPrice-app/internal/llm"
	"github.com/theodu78/NLPrice-app/internal/records"
)

// Report summarizes one pipeline run. Degraded and Diagnostic carry the
// reshape adapter's verdict when the raw table was narrower than expected.
type Report struct {
	NormalizedCSV string
	Records       []entity.Record
	Dropped       []records.Dropped
	Skipped       []llm.SkippedLine
	Degraded      bool
	Diagnostic    string
	Store         StoreReport
}

// Processor owns the end-to-end ingestion flow for a single PDF.
type Processor struct {
	extractor  extract.TableExtractor
	normalizer llm.TableNormalizer
	strategy   llm.Strategy
	persister  *Persister
	logger     *slog.Logger
}

func NewProcessor(extractor extract.TableExtractor, normalizer llm.TableNormalizer, strategy llm.Strategy, persister *Persister, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor:  extractor,
		normalizer: normalizer,
		strategy:   strategy,
		persister:  persister,
		logger:     logger,
	}
}

// ProcessPDF runs the full flow: extract tables, normalize them through the
// model, coerce the response into records and persist to both stores. The
// normalized CSV is staged in a per-request temp file that is removed on
// every exit path.
func (p *Processor) ProcessPDF(ctx context.Context, pdfPath string) (Report, error) {
	start := time.Now()
	rid := uuid.NewString()
	log := p.logger.With("req_id", rid, "pdf", pdfPath)
	log.Info("pipeline.process.start")

	var report Report

	tables, err := p.extractor.ExtractTables(ctx, pdfPath)
	if err != nil {
		return report, fmt.Errorf("extract tables: %w", err)
	}

	table := extract.Reshape(tables, log)
	if table.Empty() {
		log.Warn("pipeline.process.no_tables")
		return report, common.NewAppError("NO_TABLES", fmt.Sprintf("no tables found in %s", pdfPath), common.ErrNoTables)
	}
	if table.Degraded {
		report.Degraded = true
		report.Diagnostic = table.Diagnostic
		log.Warn("pipeline.process.degraded_table", "diagnostic", table.Diagnostic)
	}

	table.Rows = llm.UnifyDecimalSeparators(table.Rows)
	raw, err := p.normalizer.NormalizeTable(ctx, table.ToCSV())
	if err != nil {
		return report, fmt.Errorf("normalize table: %w", err)
	}

	payload, skipped, err := llm.ParseResponse(p.strategy, raw)
	if err != nil {
		return report, fmt.Errorf("parse model response: %w", err)
	}
	report.Skipped = skipped
	for _, s := range skipped {
		log.Debug("pipeline.process.line_skipped", "reason", s.Reason, "line", s.Line)
	}

	tmpPath, err := stageCSV(payload)
	if err != nil {
		return report, fmt.Errorf("stage normalized csv: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn("pipeline.process.tmp_cleanup_failed", "path", tmpPath, "error", rmErr)
		}
	}()
	log.Debug("pipeline.process.csv_staged", "path", tmpPath)
	report.NormalizedCSV = payload

	coerced := records.Coerce(payload, log)
	report.Dropped = coerced.Dropped
	for _, rec := range coerced.Records {
		if vErr := records.ValidateRecord(rec); vErr != nil {
			log.Warn("pipeline.process.record_invalid", "designation", rec.Designation, "error", vErr)
			report.Dropped = append(report.Dropped, records.Dropped{Reason: vErr.Error()})
			continue
		}
		report.Records = append(report.Records, rec)
	}
	if len(report.Records) == 0 {
		return report, common.NewFormatError("no usable records in model output", raw)
	}

	report.Store = p.persister.Store(ctx, report.Records)
	log.Info("pipeline.process.ok",
		"records", len(report.Records),
		"dropped", len(report.Dropped),
		"relational_inserted", report.Store.RelationalInserted,
		"vector_upserted", report.Store.VectorUpserted,
		"elapsed_ms", time.Since(start).Milliseconds())
	return report, report.Store.Err()
}

// StoreCSV persists an already-normalized CSV payload, the manual entry path
// for rows that never came from a PDF.
func (p *Processor) StoreCSV(ctx context.Context, payload string) (Report, error) {
	var report Report
	report.NormalizedCSV = payload

	coerced := records.Coerce(payload, p.logger)
	report.Dropped = coerced.Dropped
	for _, rec := range coerced.Records {
		if err := records.ValidateRecord(rec); err != nil {
			report.Dropped = append(report.Dropped, records.Dropped{Reason: err.Error()})
			continue
		}
		report.Records = append(report.Records, rec)
	}
	if len(report.Records) == 0 {
		return report, common.NewAppError("INVALID_INPUT", "no usable records in csv input", common.ErrInvalidInput)
	}

	report.Store = p.persister.Store(ctx, report.Records)
	return report, report.Store.Err()
}

func stageCSV(payload string) (string, error) {
	f, err := os.CreateTemp("", "nlprice-*.csv")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
