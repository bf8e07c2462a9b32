package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/theodu78/NLPrice-app/internal/app"
	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/export"
	"github.com/theodu78/NLPrice-app/internal/query"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func usage() {
	printError("Usage: %s [flags] <question>\n", os.Args[0])
	printError("Searches stored articles by substring and by semantic similarity.\n")
	flag.PrintDefaults()
}

func main() {
	var (
		topK  = flag.Int("top-k", 0, "max vector hits (defaults to QUERY_TOP_K)")
		inmem = flag.Bool("inmem", false, "use in-memory stores instead of SQLite/Qdrant")
		xlsx  = flag.String("xlsx", "", "optional XLSX output path for the results")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	question := strings.Join(flag.Args(), " ")

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if *topK <= 0 {
		*topK = cfg.Parser.TopK
	}

	a, err := app.New(ctx, cfg, app.Options{InMem: *inmem, NeedEmbedder: true}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	engine := query.NewEngine(a.Articles, a.Embedder, a.Vectors, logger)
	results, err := engine.Search(ctx, question, *topK)
	if err != nil {
		printError("Error: query failed: %v\n", err)
		os.Exit(1)
	}

	printResults(question, results)

	if *xlsx != "" {
		data, err := export.NewService(logger).ResultsXLSX(results)
		if err != nil {
			printError("Error: export failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, data, 0644); err != nil {
			printError("Error: cannot write %s: %v\n", *xlsx, err)
			os.Exit(1)
		}
		fmt.Printf("\nResults written to %s\n", *xlsx)
	}
}

func printResults(question string, results []query.Result) {
	if len(results) == 0 {
		fmt.Printf("No matches for %q.\n", question)
		return
	}

	fmt.Printf("Results for %q:\n\n", question)
	var lastSource query.Source
	for _, res := range results {
		if res.Source != lastSource {
			switch res.Source {
			case query.SourceRelational:
				fmt.Println("Exact matches:")
			case query.SourceVector:
				fmt.Println("Similar articles:")
			}
			lastSource = res.Source
		}
		fmt.Printf("  %s\n", formatResult(res))
	}
}

func formatResult(res query.Result) string {
	rec := res.Record
	var b strings.Builder
	b.WriteString(rec.Designation)
	if rec.Unit != "" {
		fmt.Fprintf(&b, " (%s)", rec.Unit)
	}
	fmt.Fprintf(&b, " - %s", entity.FormatPrice(rec.UnitPrice))
	if res.Source == query.SourceVector {
		fmt.Fprintf(&b, " [similarity %.3f]", res.Score)
	}
	return b.String()
}
