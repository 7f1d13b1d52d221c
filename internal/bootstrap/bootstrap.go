package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencarelab/eidbi-assistant/internal/config"
	"github.com/opencarelab/eidbi-assistant/internal/core/corpus"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
	"github.com/opencarelab/eidbi-assistant/internal/core/usecase"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/llm/ollama"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/queue/nats"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/repository/postgres"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/resilience"
	"github.com/opencarelab/eidbi-assistant/internal/observability/metrics"
)

const serviceName = "eidbi-api"

type App struct {
	Config config.Config

	Store       *corpus.Store
	Retriever   ports.Retriever
	QueryUC     ports.QueryService
	Bus         *nats.Bus
	HTTPMetrics *metrics.HTTPServerMetrics

	retrievalMetrics *metrics.RetrievalMetrics
	closeFn          func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	passageRepo := postgres.NewPassageRepository(db)
	factRepo := postgres.NewFactRepository(db)
	if err := passageRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure passage schema: %w", err)
	}
	if err := factRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure fact schema: %w", err)
	}

	vocabulary := config.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocabulary, err = config.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPServerMetrics(serviceName, registry)
	retrievalMetrics := metrics.NewRetrievalMetrics(serviceName, registry)

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init nats bus: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := usecase.NewCachedEmbedder(
		ollama.NewEmbedder(ollamaClient, cfg.EmbedRateLimit, cfg.EmbedRateBurst),
		cfg.EmbeddingCacheSize,
	)
	generator := ollama.NewGenerator(ollamaClient)

	store := corpus.NewStore(passageRepo, factRepo)
	reloadErr := store.Reload(ctx)
	if reloadErr != nil {
		// The API can start on an empty snapshot and catch up on the next
		// refresh notification.
		slog.Warn("initial_corpus_load_failed", "error", reloadErr)
	}
	retrievalMetrics.CorpusReload(reloadErr)
	snap := store.Current()
	retrievalMetrics.SetCorpusSize(len(snap.Passages), len(snap.Facts))

	retrieveUC := usecase.NewRetrieveUseCase(store, embedder, vocabulary, usecase.RetrieveConfig{
		VectorTopK:    cfg.VectorTopK,
		KeywordTopK:   cfg.KeywordTopK,
		FusedTopK:     cfg.FusedTopK,
		MaxVariants:   cfg.MaxVariants,
		EmbedVariants: cfg.EmbedVariants,
		VectorWeight:  cfg.VectorWeight,
	}, retrievalMetrics)
	queryUC := usecase.NewQueryUseCase(retrieveUC, generator, cfg.ResponseCacheSize, retrievalMetrics)

	return &App{
		Config:           cfg,
		Store:            store,
		Retriever:        retrieveUC,
		QueryUC:          queryUC,
		Bus:              bus,
		HTTPMetrics:      httpMetrics,
		retrievalMetrics: retrievalMetrics,
		closeFn: func() {
			bus.Close()
			_ = db.Close()
		},
	}, nil
}

// ListenForRefresh blocks until ctx is done, reloading the corpus snapshot
// and dropping the response cache on every refresh notification.
func (a *App) ListenForRefresh(ctx context.Context) error {
	return a.Bus.SubscribeRefresh(ctx, func(ctx context.Context, reason string) error {
		err := a.Store.Reload(ctx)
		a.retrievalMetrics.CorpusReload(err)
		if err != nil {
			return fmt.Errorf("reload corpus (%s): %w", reason, err)
		}

		snap := a.Store.Current()
		a.retrievalMetrics.SetCorpusSize(len(snap.Passages), len(snap.Facts))
		a.QueryUC.ClearCache()
		slog.Info("corpus_refreshed", "reason", reason, "passages", len(snap.Passages), "facts", len(snap.Facts))
		return nil
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
