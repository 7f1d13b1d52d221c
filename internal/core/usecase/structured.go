package usecase

import (
	"sort"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const (
	quantityEntityBoost = 2.0
	keyMatchBoost       = 1.5
)

// searchFacts scores curated facts by case-insensitive substring match
// against key, value, or source. Quantity questions over entity keys get the
// exact-fact boost; reaching the same fact via several keywords keeps the
// maximum relevance, never the sum.
func searchFacts(facts []domain.Fact, keywords []string, v *vocab) []domain.ScoredCandidate {
	if len(keywords) == 0 || len(facts) == 0 {
		return nil
	}

	best := make(map[string]float64, len(facts))
	order := make(map[string]int, len(facts))

	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if kw == "" {
			continue
		}
		for _, fact := range facts {
			keyLower := strings.ToLower(fact.Key)
			if !strings.Contains(keyLower, kw) &&
				!strings.Contains(strings.ToLower(fact.Value), kw) &&
				!strings.Contains(strings.ToLower(fact.Source), kw) {
				continue
			}

			relevance := 1.0
			if v.isQuantityWord(kw) && v.keyHasEntityTerm(fact.Key) {
				relevance *= quantityEntityBoost
			}
			if strings.Contains(keyLower, kw) {
				relevance *= keyMatchBoost
			}

			if _, seen := best[fact.ID]; !seen {
				order[fact.ID] = len(order)
			}
			if relevance > best[fact.ID] {
				best[fact.ID] = relevance
			}
		}
	}

	results := make([]domain.ScoredCandidate, 0, len(best))
	for id, relevance := range best {
		results = append(results, domain.ScoredCandidate{
			ID:     id,
			Score:  relevance,
			Signal: domain.SignalStructured,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].ID] < order[results[j].ID]
	})
	return results
}
