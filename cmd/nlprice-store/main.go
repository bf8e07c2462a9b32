package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/theodu78/NLPrice-app/internal/app"
	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func usage() {
	printError("Usage: %s [flags] <csv-file>\n", os.Args[0])
	printError("Stores an already-normalized CSV of articles into both stores.\n")
	flag.PrintDefaults()
}

func main() {
	inmem := flag.Bool("inmem", false, "use in-memory stores instead of SQLite/Qdrant")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	csvPath := flag.Arg(0)

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	payload, err := os.ReadFile(csvPath)
	if err != nil {
		printError("Error: cannot read %s: %v\n", csvPath, err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := common.LoadConfig()

	a, err := app.New(ctx, cfg, app.Options{InMem: *inmem, NeedEmbedder: true}, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	persister := pipeline.NewPersister(a.Articles, a.Embedder, a.Vectors, logger)
	processor := pipeline.NewProcessor(nil, nil, a.Strategy(), persister, logger)

	report, err := processor.StoreCSV(ctx, string(payload))
	if err != nil {
		logger.Error("store failed", "csv", csvPath, "error", err)
		os.Exit(1)
	}

	logger.Info("store complete",
		"csv", csvPath,
		"records", len(report.Records),
		"dropped", len(report.Dropped),
		"relational_inserted", report.Store.RelationalInserted,
		"vector_upserted", report.Store.VectorUpserted)
}
