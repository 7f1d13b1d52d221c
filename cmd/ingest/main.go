package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/config"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/chunking"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/ingest/chunkfile"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/ingest/excel"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/ingest/pdfdoc"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/llm/ollama"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/queue/nats"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/repository/postgres"
	"github.com/opencarelab/eidbi-assistant/internal/infrastructure/resilience"
	"github.com/opencarelab/eidbi-assistant/internal/observability/logging"
)

func main() {
	var (
		pdfPath      = flag.String("pdf", "", "PDF document to chunk, embed and store as passages")
		chunksPath   = flag.String("chunks", "", "scraper JSONL chunk export to store as passages")
		xlsxPath     = flag.String("xlsx", "", "spreadsheet with key/value facts to store")
		source       = flag.String("source", "", "human-readable source name for ingested records")
		sourceURL    = flag.String("source-url", "", "canonical URL of the source document")
		chunkSize    = flag.Int("chunk-size", 900, "passage chunk size in runes")
		chunkOverlap = flag.Int("chunk-overlap", 150, "overlap between adjacent chunks in runes")
		skipEmbed    = flag.Bool("skip-embed", false, "store passages without embeddings")
	)
	flag.Parse()

	cfg := config.Load()
	logging.Setup("eidbi-ingest", cfg.LogLevel)

	if *pdfPath == "" && *chunksPath == "" && *xlsxPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to ingest: provide -pdf, -chunks and/or -xlsx")
		flag.Usage()
		os.Exit(2)
	}
	if *source == "" {
		fmt.Fprintln(os.Stderr, "-source is required")
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, cfg, *pdfPath, *chunksPath, *xlsxPath, *source, *sourceURL, *chunkSize, *chunkOverlap, *skipEmbed); err != nil {
		slog.Error("ingest_failed", "error", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	cfg config.Config,
	pdfPath, chunksPath, xlsxPath, source, sourceURL string,
	chunkSize, chunkOverlap int,
	skipEmbed bool,
) error {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	passageRepo := postgres.NewPassageRepository(db)
	factRepo := postgres.NewFactRepository(db)
	if err := passageRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure passage schema: %w", err)
	}
	if err := factRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure fact schema: %w", err)
	}

	if pdfPath != "" {
		if err := ingestPDF(ctx, cfg, passageRepo, pdfPath, source, sourceURL, chunkSize, chunkOverlap, skipEmbed); err != nil {
			return err
		}
	}
	if chunksPath != "" {
		passages, err := chunkfile.NewReader(source, sourceURL).ReadPassages(chunksPath)
		if err != nil {
			return fmt.Errorf("read chunks from %s: %w", chunksPath, err)
		}
		if err := passageRepo.UpsertPassages(ctx, passages); err != nil {
			return fmt.Errorf("store passages: %w", err)
		}
		slog.Info("passages_ingested", "path", chunksPath, "count", len(passages))
	}
	if xlsxPath != "" {
		facts, err := excel.NewReader(source, sourceURL).ReadFacts(xlsxPath)
		if err != nil {
			return fmt.Errorf("read facts from %s: %w", xlsxPath, err)
		}
		if err := factRepo.UpsertFacts(ctx, facts); err != nil {
			return fmt.Errorf("store facts: %w", err)
		}
		slog.Info("facts_ingested", "path", xlsxPath, "count", len(facts))
	}

	return publishRefresh(ctx, cfg, source)
}

func ingestPDF(
	ctx context.Context,
	cfg config.Config,
	repo *postgres.PassageRepository,
	path, source, sourceURL string,
	chunkSize, chunkOverlap int,
	skipEmbed bool,
) error {
	text, err := pdfdoc.Extract(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	chunks := chunking.NewSplitter(chunkSize, chunkOverlap).Split(text)
	if len(chunks) == 0 {
		slog.Warn("pdf_empty", "path", path)
		return nil
	}

	var embedder *ollama.Embedder
	if !skipEmbed {
		executor := resilience.NewExecutor(resilience.DefaultPolicy())
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		embedder = ollama.NewEmbedder(client, cfg.EmbedRateLimit, cfg.EmbedRateBurst)
	}

	prefix := passagePrefix(source, path)
	passages := make([]domain.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		p := domain.Passage{
			ID:        fmt.Sprintf("%s_%04d", prefix, i),
			Content:   chunk,
			Title:     source,
			SourceURL: sourceURL,
		}
		if embedder != nil {
			vec, err := embedder.EmbedQuery(ctx, chunk)
			if err != nil {
				return fmt.Errorf("embed chunk %d of %s: %w", i, path, err)
			}
			p.Embedding = vec
		}
		passages = append(passages, p)
	}

	if err := repo.UpsertPassages(ctx, passages); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}
	slog.Info("passages_ingested", "path", path, "count", len(passages), "embedded", !skipEmbed)
	return nil
}

func publishRefresh(ctx context.Context, cfg config.Config, reason string) error {
	retryOnFailedConnect := false
	bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		RetryOnFailedConnect: &retryOnFailedConnect,
	})
	if err != nil {
		// Ingest already committed; running API instances will pick the new
		// corpus up on their next restart.
		slog.Warn("refresh_publish_skipped", "error", err)
		return nil
	}
	defer bus.Close()

	var publisher ports.RefreshPublisher = bus
	if err := publisher.PublishRefresh(ctx, reason); err != nil {
		return fmt.Errorf("publish refresh: %w", err)
	}
	slog.Info("refresh_published", "subject", cfg.NATSSubject)
	return nil
}

func passagePrefix(source, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	}
	return fmt.Sprintf("pdf_%s_%s", normalize(source), normalize(base))
}
