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

func main() {
	inmem := flag.Bool("inmem", false, "use in-memory stores instead of SQLite/Qdrant")
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

	report := pipeline.Reset(ctx, a.Articles, a.Vectors, logger)

	fmt.Printf("relational store: %s", report.Relational.State)
	if report.Relational.State == pipeline.ResetCleared {
		fmt.Printf(" (%d rows removed)", report.Relational.Removed)
	}
	fmt.Println()

	fmt.Printf("vector store: %s", report.Vector.State)
	if report.Vector.State == pipeline.ResetCleared {
		fmt.Printf(" (%d points removed)", report.Vector.Removed)
	}
	fmt.Println()

	if report.Failed() {
		os.Exit(1)
	}
}
