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
	"github.com/theodu78/NLPrice-app/internal/export"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out    = flag.String("out", "articles.xlsx", "XLSX output path")
		filter = flag.String("filter", "", "only export articles whose designation contains this text")
		inmem  = flag.Bool("inmem", false, "use in-memory stores instead of SQLite/Qdrant")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	a, err := app.New(ctx, cfg, app.Options{InMem: *inmem}, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	data, err := export.NewService(logger).StoredRecordsXLSX(ctx, a.Articles, *filter)
	if err != nil {
		logger.Error("export failed", "filter", *filter, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("xlsx written", "path", *out, "filter", *filter)
}
