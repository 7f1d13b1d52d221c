package ports

import (
	"context"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// Retriever is the inbound contract for the ranked-retrieval pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, opts domain.SearchOptions) (*domain.RetrievalResult, error)
}

// QueryService is the inbound contract for full question answering: retrieval
// plus answer generation, fronted by the result cache.
type QueryService interface {
	Answer(ctx context.Context, question string, limit int, opts domain.SearchOptions) (*domain.Answer, error)
	ClearCache()
}
