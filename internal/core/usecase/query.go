package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/opencarelab/eidbi-assistant/internal/cache"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
)

const defaultResponseCacheSize = 100

// QueryUseCase answers questions: ranked retrieval, answer generation, and
// the result cache that makes repeated identical queries idempotent. The
// cache is the single piece of shared mutable state in the engine.
type QueryUseCase struct {
	retriever ports.Retriever
	generator ports.AnswerGenerator
	responses *cache.LRU[domain.Answer]
	observer  Observer
}

func NewQueryUseCase(
	retriever ports.Retriever,
	generator ports.AnswerGenerator,
	cacheSize int,
	observer Observer,
) *QueryUseCase {
	if cacheSize <= 0 {
		cacheSize = defaultResponseCacheSize
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &QueryUseCase{
		retriever: retriever,
		generator: generator,
		responses: cache.NewLRU[domain.Answer](cacheSize),
		observer:  observer,
	}
}

func (uc *QueryUseCase) Answer(
	ctx context.Context,
	question string,
	limit int,
	opts domain.SearchOptions,
) (*domain.Answer, error) {
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("empty question"))
	}
	if limit <= 0 {
		limit = defaultAnswerTopK
	}

	start := time.Now()
	key := cache.ResponseKey(question, limit, opts.Hybrid, opts.Rerank)
	if cached, ok := uc.responses.Get(key); ok {
		uc.observer.CacheLookup(true)
		cached.Cached = true
		uc.observer.QueryServed(opts, true, len(cached.Sources), time.Since(start))
		return &cached, nil
	}
	uc.observer.CacheLookup(false)

	result, err := uc.retriever.Retrieve(ctx, question, limit, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	// A total miss still flows through the generator: it answers ungrounded
	// and the caller sees an empty source list, never an error.
	text, err := uc.generator.GenerateAnswer(ctx, question, result.Passages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := domain.Answer{
		Query:   question,
		Text:    text,
		Sources: result.Passages,
	}
	uc.responses.Set(key, answer)
	uc.observer.QueryServed(opts, false, len(answer.Sources), time.Since(start))
	return &answer, nil
}

// ClearCache empties the response cache, typically after a corpus reload.
func (uc *QueryUseCase) ClearCache() {
	uc.responses.Clear()
}
