package usecase

import (
	"context"

	"github.com/opencarelab/eidbi-assistant/internal/cache"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
)

// cachedEmbedder memoizes successful embeddings by text hash so repeated
// variants across requests skip the provider call. Failures are not cached.
type cachedEmbedder struct {
	inner ports.Embedder
	cache *cache.LRU[[]float32]
}

// NewCachedEmbedder wraps an embedder with a bounded LRU.
func NewCachedEmbedder(inner ports.Embedder, size int) ports.Embedder {
	return &cachedEmbedder{
		inner: inner,
		cache: cache.NewLRU[[]float32](size),
	}
}

func (e *cachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cache.TextKey(text)
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, vec)
	return vec, nil
}
