package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()

	store, err := repository.Open(ctx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer store.Close(nil)

	if err := store.HealthCheck(ctx); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Println("DB health: OK")

	articles := repository.NewArticleRepository(store, nil)
	n, err := articles.Count(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		log.Println("articles table: absent")
	case err != nil:
		log.Fatalf("counting articles: %v", err)
	default:
		log.Printf("articles count: %d", n)
	}

	vectors := qdrant.NewStorage(qdrant.Config{
		URL:        cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey,
		Collection: cfg.Vector.Collection,
		Timeout:    cfg.Vector.Timeout,
	}, nil)

	points, err := vectors.Count(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		log.Printf("vector index %q: absent", cfg.Vector.Collection)
	case err != nil:
		log.Printf("vector index %q: FAIL (%v)", cfg.Vector.Collection, err)
		os.Exit(1)
	default:
		log.Printf("vector index %q: OK (%d points)", cfg.Vector.Collection, points)
	}
}
