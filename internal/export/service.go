// Package export renders records and query results as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/query"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/schema"
)

// Service produces XLSX bytes for stored records and reconciled query hits.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// StoredRecordsXLSX exports the relational store's records. A non-empty
// filter keeps only rows whose designation contains it; an empty filter
// exports everything.
func (s *Service) StoredRecordsXLSX(ctx context.Context, articles repository.ArticleRepository, filter string) ([]byte, error) {
	recs, err := articles.SearchSubstring(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return s.RecordsXLSX(recs)
}

// RecordsXLSX returns a workbook with one row per record under the canonical
// column header.
func (s *Service) RecordsXLSX(recs []entity.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Articles"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range schema.ColumnNames() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range recs {
		writeRecord(f, sheet, row, 1, rec)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 48) // designation
	_ = f.SetColWidth(sheet, "B", "B", 10) // unit
	_ = f.SetColWidth(sheet, "C", "E", 14) // numbers

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ResultsXLSX returns a workbook of reconciled query hits with their source
// and score prepended to the record columns.
func (s *Service) ResultsXLSX(results []query.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := append([]string{"source", "score"}, schema.ColumnNames()...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, res := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, string(res.Source))
		write(2, res.Score)
		writeRecord(f, sheet, row, 3, res.Record)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 48)
	_ = f.SetColWidth(sheet, "D", "G", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRecord(f *excelize.File, sheet string, row, startCol int, rec entity.Record) {
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(startCol+col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	write(0, rec.Designation)
	write(1, rec.Unit)
	if rec.Quantity != nil {
		write(2, *rec.Quantity)
	}
	write(3, rec.UnitPrice)
	if rec.TotalPrice != nil {
		write(4, *rec.TotalPrice)
	}
}
