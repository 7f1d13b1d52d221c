package usecase

import (
	"sort"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const (
	defaultFusedTopK    = 12
	defaultVectorWeight = 0.7
	structuredPrior     = 1.5
)

// fuseSignals combines the three retrieval signals into one ranked list.
// Structured hits establish a boosted prior, vector and keyword scores are
// max-normalized within their own result sets and weighted by vectorWeight /
// (1 - vectorWeight), and all contributions are summed per id. Ties resolve
// by first-seen order across structured, then vector, then keyword input.
func fuseSignals(structured, vector, keyword []domain.ScoredCandidate, k int, vectorWeight float64) []domain.ScoredCandidate {
	if k <= 0 {
		k = defaultFusedTopK
	}
	if vectorWeight < 0 || vectorWeight > 1 {
		vectorWeight = defaultVectorWeight
	}

	combined := make(map[string]float64)
	order := make(map[string]int)
	accumulate := func(id string, contribution float64) {
		if _, seen := combined[id]; !seen {
			order[id] = len(order)
		}
		combined[id] += contribution
	}

	for _, c := range structured {
		accumulate(c.ID, c.Score*structuredPrior)
	}

	maxVector := maxScore(vector)
	if maxVector > 0 {
		for _, c := range vector {
			accumulate(c.ID, vectorWeight*(c.Score/maxVector))
		}
	}

	maxKeyword := maxScore(keyword)
	if maxKeyword > 0 {
		for _, c := range keyword {
			accumulate(c.ID, (1-vectorWeight)*(c.Score/maxKeyword))
		}
	}

	results := make([]domain.ScoredCandidate, 0, len(combined))
	for id, score := range combined {
		results = append(results, domain.ScoredCandidate{
			ID:     id,
			Score:  score,
			Signal: domain.SignalCombined,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].ID] < order[results[j].ID]
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func maxScore(candidates []domain.ScoredCandidate) float64 {
	max := 0.0
	for _, c := range candidates {
		if c.Score > max {
			max = c.Score
		}
	}
	return max
}
