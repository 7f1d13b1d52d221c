package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencarelab/eidbi-assistant/internal/config"
	"github.com/opencarelab/eidbi-assistant/internal/core/corpus"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
)

const (
	defaultAnswerTopK    = 5
	defaultEmbedVariants = 3
)

// RetrieveConfig carries the tuning knobs of the retrieval pipeline. Zero
// values fall back to the package defaults.
type RetrieveConfig struct {
	VectorTopK    int
	KeywordTopK   int
	FusedTopK     int
	MaxVariants   int
	EmbedVariants int
	VectorWeight  float64
}

// RetrieveUseCase runs the full ranked-retrieval pipeline over the current
// corpus snapshot: expansion, per-signal search, fusion, hydration, rerank.
type RetrieveUseCase struct {
	store    *corpus.Store
	embedder ports.Embedder
	vocab    *vocab
	cfg      RetrieveConfig
	observer Observer
}

func NewRetrieveUseCase(
	store *corpus.Store,
	embedder ports.Embedder,
	vocabulary config.Vocabulary,
	cfg RetrieveConfig,
	observer Observer,
) *RetrieveUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if cfg.VectorWeight <= 0 || cfg.VectorWeight > 1 {
		cfg.VectorWeight = defaultVectorWeight
	}
	if cfg.EmbedVariants <= 0 {
		cfg.EmbedVariants = defaultEmbedVariants
	}
	return &RetrieveUseCase{
		store:    store,
		embedder: embedder,
		vocab:    compileVocabulary(vocabulary),
		cfg:      cfg,
		observer: observer,
	}
}

// Retrieve returns the top-limit ranked passages and facts for a query. An
// empty result is the normal total-miss outcome; errors only surface for
// invalid input, never for upstream embedding degradation.
func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	limit int,
	opts domain.SearchOptions,
) (*domain.RetrievalResult, error) {
	if limit <= 0 {
		limit = defaultAnswerTopK
	}

	expansion := expandQuery(uc.vocab, query, uc.cfg.MaxVariants)
	snap := uc.store.Current()

	queryEmbedding := uc.embedVariants(ctx, expansion.Variants)

	var vectorResults []domain.ScoredCandidate
	if len(queryEmbedding) > 0 {
		vectorResults = searchByVector(snap, queryEmbedding, uc.cfg.VectorTopK)
	}
	keywordResults := searchByKeywords(snap.Passages, expansion.Keywords, uc.cfg.KeywordTopK)
	structuredResults := searchFacts(snap.Facts, expansion.Keywords, uc.vocab)

	uc.observer.SignalCandidates(domain.SignalVector, len(vectorResults))
	uc.observer.SignalCandidates(domain.SignalKeyword, len(keywordResults))
	uc.observer.SignalCandidates(domain.SignalStructured, len(structuredResults))

	var candidates []domain.ScoredCandidate
	if opts.Hybrid {
		candidates = fuseSignals(structuredResults, vectorResults, keywordResults, uc.cfg.FusedTopK, uc.cfg.VectorWeight)
	} else {
		candidates = vectorResults
		if len(candidates) == 0 {
			candidates = keywordResults
		}
		fusedTopK := uc.cfg.FusedTopK
		if fusedTopK <= 0 {
			fusedTopK = defaultFusedTopK
		}
		if len(candidates) > fusedTopK {
			candidates = candidates[:fusedTopK]
		}
	}

	hydrated := hydrateCandidates(snap, candidates)

	if opts.Rerank && len(hydrated) > 0 {
		reranked := rerankCandidates(query, toRerankCandidates(hydrated), expansion.Keywords, uc.vocab)
		hydrated = reorderByScores(hydrated, reranked)
	}

	if len(hydrated) > limit {
		hydrated = hydrated[:limit]
	}

	return &domain.RetrievalResult{
		Query:    query,
		Passages: hydrated,
		Keywords: expansion.Keywords,
	}, nil
}

// embedVariants embeds up to EmbedVariants query variants, warming the
// embedding cache, and returns the first successful vector. Total failure
// disables the vector signal for this request only.
func (uc *RetrieveUseCase) embedVariants(ctx context.Context, variants []string) []float32 {
	var queryEmbedding []float32
	maxEmbeds := uc.cfg.EmbedVariants
	for i, variant := range variants {
		if i >= maxEmbeds {
			break
		}
		vec, err := uc.embedder.EmbedQuery(ctx, variant)
		if err != nil {
			uc.observer.EmbeddingFailure()
			slog.Warn("embed_variant_failed", "variant_index", i, "error", err)
			continue
		}
		if queryEmbedding == nil {
			queryEmbedding = vec
		}
	}
	return queryEmbedding
}

// hydrateCandidates resolves candidate ids against the snapshot. Facts
// hydrate into a key-fact text rendering so the generator can cite them like
// any passage. Unresolvable ids are dropped.
func hydrateCandidates(snap *corpus.Snapshot, candidates []domain.ScoredCandidate) []domain.RankedPassage {
	hydrated := make([]domain.RankedPassage, 0, len(candidates))
	for _, c := range candidates {
		if p, ok := snap.PassageByID(c.ID); ok {
			hydrated = append(hydrated, domain.RankedPassage{
				ID:        p.ID,
				Content:   p.Content,
				Title:     p.Title,
				SourceURL: p.SourceURL,
				Score:     c.Score,
				Signal:    c.Signal,
			})
			continue
		}
		if f, ok := snap.FactByID(c.ID); ok {
			hydrated = append(hydrated, domain.RankedPassage{
				ID:        f.ID,
				Content:   fmt.Sprintf("Key Fact: %s\nValue: %s\nSource: %s", f.Key, f.Value, f.Source),
				Title:     f.Key,
				SourceURL: f.SourceURL,
				Score:     c.Score,
				Signal:    c.Signal,
			})
		}
	}
	return hydrated
}

func toRerankCandidates(hydrated []domain.RankedPassage) []rerankCandidate {
	out := make([]rerankCandidate, 0, len(hydrated))
	for _, h := range hydrated {
		out = append(out, rerankCandidate{
			ID:      h.ID,
			Content: h.Content,
			Title:   h.Title,
			Base:    h.Score,
		})
	}
	return out
}

// reorderByScores applies the reranker's ordering and refined scores back to
// the hydrated results.
func reorderByScores(hydrated []domain.RankedPassage, reranked []domain.ScoredCandidate) []domain.RankedPassage {
	byID := make(map[string]domain.RankedPassage, len(hydrated))
	for _, h := range hydrated {
		byID[h.ID] = h
	}
	out := make([]domain.RankedPassage, 0, len(reranked))
	for _, r := range reranked {
		h, ok := byID[r.ID]
		if !ok {
			continue
		}
		h.Score = r.Score
		out = append(out, h)
	}
	return out
}
