package ports

import (
	"context"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// Embedder turns text into a fixed-length vector. Implementations are
// expected to be slow and fallible; the engine tolerates per-call failure.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// PassageSource supplies the full passage snapshot on corpus reload.
type PassageSource interface {
	LoadPassages(ctx context.Context) ([]domain.Passage, error)
}

// FactSource supplies the structured fact snapshot on corpus reload.
type FactSource interface {
	LoadFacts(ctx context.Context) ([]domain.Fact, error)
}

// AnswerGenerator creates the final user-facing answer from ranked context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, sources []domain.RankedPassage) (string, error)
}

// RefreshPublisher notifies running services that the corpus changed.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, reason string) error
}
