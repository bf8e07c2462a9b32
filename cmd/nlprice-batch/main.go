package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/theodu78/NLPrice-app/internal/app"
	"github.com/theodu78/NLPrice-app/internal/async"
	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/export"
	"github.com/theodu78/NLPrice-app/internal/extract"
	"github.com/theodu78/NLPrice-app/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		pdf     = flag.String("pdf", "", "price-quote PDF to process")
		dir     = flag.String("dir", "", "directory of PDFs to process concurrently")
		workers = flag.Int("workers", 4, "worker count for --dir mode")
		inmem   = flag.Bool("inmem", false, "use in-memory stores instead of SQLite/Qdrant")
		out     = flag.String("out", "", "optional XLSX output path for the extracted records (--pdf mode)")
	)
	flag.Parse()

	if (*pdf == "") == (*dir == "") {
		printError("Error: exactly one of --pdf or --dir is required\n")
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	a, err := app.New(ctx, cfg, app.Options{InMem: *inmem, NeedEmbedder: true}, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	extractor := extract.NewClient(extract.Config{
		BaseURL: cfg.Extractor.BaseURL,
		Timeout: cfg.Extractor.Timeout,
	}, logger)

	persister := pipeline.NewPersister(a.Articles, a.Embedder, a.Vectors, logger)
	processor := pipeline.NewProcessor(extractor, a.Normalizer(), a.Strategy(), persister, logger)

	if *dir != "" {
		processDirectory(ctx, processor, *dir, *workers, logger)
		return
	}

	report, err := processor.ProcessPDF(ctx, *pdf)
	if err != nil {
		logger.Error("processing failed", "pdf", *pdf, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"pdf", *pdf,
		"records", len(report.Records),
		"dropped", len(report.Dropped),
		"relational_inserted", report.Store.RelationalInserted,
		"vector_upserted", report.Store.VectorUpserted)

	if *out != "" {
		xlsxBytes, err := export.NewService(logger).RecordsXLSX(report.Records)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("xlsx written", "path", *out, "rows", len(report.Records))
	}
}

func processDirectory(ctx context.Context, processor *pipeline.Processor, dir string, workers int, logger *slog.Logger) {
	pdfs, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		logger.Error("failed to scan directory", "dir", dir, "error", err)
		os.Exit(1)
	}
	if len(pdfs) == 0 {
		logger.Warn("no pdf files found", "dir", dir)
		return
	}

	queue := async.NewProcessorQueue(processor, logger, async.WithWorkers(workers))
	for _, p := range pdfs {
		_ = queue.Enqueue(ctx, async.Job{PDFPath: p, SubmittedAt: time.Now()})
	}
	queue.Shutdown(ctx)

	processed, failed := queue.Stats()
	logger.Info("batch complete", "dir", dir, "pdfs", len(pdfs), "processed", processed, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
