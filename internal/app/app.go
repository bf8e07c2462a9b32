// Package app wires configuration into the concrete stores and clients the
// command-line binaries share.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/embedding"
	"github.com/theodu78/NLPrice-app/internal/llm"
	llmopenai "github.com/theodu78/NLPrice-app/internal/llm/openai"
	"github.com/theodu78/NLPrice-app/internal/repository"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
	"github.com/theodu78/NLPrice-app/internal/vectorstore/memory"
	"github.com/theodu78/NLPrice-app/internal/vectorstore/qdrant"
)

// App bundles the stores and clients behind one lifecycle.
type App struct {
	Cfg      *common.Config
	Logger   *slog.Logger
	Store    *repository.Store
	Articles repository.ArticleRepository
	Vectors  vectorstore.Storage
	Embedder embedding.Embedder
}

// Options tweak the wiring for a single binary invocation.
type Options struct {
	// InMem swaps both stores for in-process ones: SQLite :memory: and the
	// brute-force vector store. Useful for dry runs without infrastructure.
	InMem bool
	// NeedEmbedder controls whether a missing embedding API key is fatal.
	NeedEmbedder bool
}

// New validates cfg and opens every backend the binary asked for.
func New(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.NeedEmbedder && cfg.LLM.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", common.ErrConfigMissing)
	}

	dbCfg := cfg.Database
	if opts.InMem {
		dbCfg.Driver = "sqlite"
		dbCfg.DSN = ":memory:"
	}
	store, err := repository.Open(ctx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open relational store: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Articles: repository.NewArticleRepository(store, logger),
	}

	if opts.InMem {
		a.Vectors = memory.NewStorage()
	} else {
		a.Vectors = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Vector.URL,
			APIKey:     cfg.Vector.APIKey,
			Collection: cfg.Vector.Collection,
			Timeout:    cfg.Vector.Timeout,
		}, logger)
	}

	if opts.NeedEmbedder {
		embedder, err := embedding.NewClient(embedding.Config{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Vector.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		}, logger)
		if err != nil {
			store.Close(logger)
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		a.Embedder = embedder
	}

	return a, nil
}

// Normalizer builds the chat-completion client used for table normalization.
func (a *App) Normalizer() llm.TableNormalizer {
	return llmopenai.NewClient(llmopenai.Config{
		APIKey:      a.Cfg.LLM.APIKey,
		BaseURL:     a.Cfg.LLM.BaseURL,
		Model:       a.Cfg.LLM.Model,
		Temperature: a.Cfg.LLM.Temperature,
		MaxTokens:   a.Cfg.LLM.MaxTokens,
		Timeout:     a.Cfg.LLM.Timeout,
	}, a.Logger)
}

// Strategy returns the configured response-parsing strategy.
func (a *App) Strategy() llm.Strategy {
	if a.Cfg.Parser.Strategy == string(llm.StrategySentinel) {
		return llm.StrategySentinel
	}
	return llm.StrategyLineFilter
}

// Close releases the relational pool.
func (a *App) Close() {
	a.Store.Close(a.Logger)
}
