package usecase

import (
	"regexp"
	"sort"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const (
	defaultKeywordTopK = 20
	titleMatchWeight   = 3
)

type keywordHit struct {
	id       string
	total    int
	distinct int
}

// searchByKeywords counts whole-word, case-insensitive keyword occurrences
// per passage. Title hits weigh ×3 against content hits; breadth of distinct
// keyword coverage breaks ties ahead of raw repetition.
func searchByKeywords(passages []domain.Passage, keywords []string, k int) []domain.ScoredCandidate {
	if k <= 0 {
		k = defaultKeywordTopK
	}
	if len(keywords) == 0 {
		return nil
	}

	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, keyword := range keywords {
		patterns = append(patterns, wholeWordPattern(keyword))
	}

	var hits []keywordHit
	for _, p := range passages {
		hit := keywordHit{id: p.ID}
		for _, pattern := range patterns {
			count := len(pattern.FindAllStringIndex(p.Content, -1))
			count += titleMatchWeight * len(pattern.FindAllStringIndex(p.Title, -1))
			if count > 0 {
				hit.total += count
				hit.distinct++
			}
		}
		if hit.total > 0 {
			hits = append(hits, hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].total != hits[j].total {
			return hits[i].total > hits[j].total
		}
		return hits[i].distinct > hits[j].distinct
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]domain.ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.ScoredCandidate{
			ID:     hit.id,
			Score:  float64(hit.total),
			Signal: domain.SignalKeyword,
		})
	}
	return results
}
