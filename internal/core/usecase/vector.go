package usecase

import (
	"math"
	"sort"

	"github.com/opencarelab/eidbi-assistant/internal/core/corpus"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const defaultVectorTopK = 15

// cosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero norm. Accumulation is float64 to keep the result stable across runs.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// searchByVector scores every vector-eligible passage in the snapshot against
// the query embedding. Passages without a usable embedding are absent from
// the result, not scored as zero. Ties keep snapshot order.
func searchByVector(snap *corpus.Snapshot, queryEmbedding []float32, k int) []domain.ScoredCandidate {
	if k <= 0 {
		k = defaultVectorTopK
	}
	if len(queryEmbedding) == 0 {
		return nil
	}

	var results []domain.ScoredCandidate
	for _, p := range snap.Passages {
		if !snap.VectorEligible(p) {
			continue
		}
		results = append(results, domain.ScoredCandidate{
			ID:     p.ID,
			Score:  cosineSimilarity(queryEmbedding, p.Embedding),
			Signal: domain.SignalVector,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
