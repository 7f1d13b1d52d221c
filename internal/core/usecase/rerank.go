package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const (
	exactMatchBoost    = 5.0
	titleMatchBoost    = 3.0
	densityBoostFactor = 2.0
	definitionBoost    = 4.0
	overviewBoost      = 3.5
	primaryTopicBoost  = 2.5
	fuzzyBoostFactor   = 2.0

	// fuzzyWindow caps how much content the sequence ratio sees.
	fuzzyWindow = 200

	// primaryTopicThreshold is the anchor-mention count above which a passage
	// is treated as being about the anchor rather than mentioning it.
	primaryTopicThreshold = 3
)

// rerankCandidate is a fused candidate hydrated with the content the
// reranker needs.
type rerankCandidate struct {
	ID      string
	Content string
	Title   string
	Base    float64
}

// rerankCandidates refines fused scores with additive, content-aware boosts.
// Boosts only ever add evidence: a candidate with no matching signal keeps
// its fused base score, and equal final scores preserve fused order.
func rerankCandidates(query string, candidates []rerankCandidate, keywords []string, v *vocab) []domain.ScoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	queryLower := strings.ToLower(query)
	definitional := v.isDefinitionalQuery(queryLower)

	// Whole-word patterns keep density consistent with keyword search: "ma"
	// must not count inside "medical".
	keywordRe := make([]*regexp.Regexp, 0, len(keywords))
	for _, keyword := range keywords {
		keywordRe = append(keywordRe, wholeWordPattern(keyword))
	}

	results := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		contentLower := strings.ToLower(c.Content)
		titleLower := strings.ToLower(c.Title)
		score := c.Base

		if queryLower != "" && strings.Contains(contentLower, queryLower) {
			score += exactMatchBoost
		}

		if titleLower != "" {
			for _, keyword := range keywords {
				if strings.Contains(titleLower, strings.ToLower(keyword)) {
					score += titleMatchBoost
					break
				}
			}
		}

		occurrences := 0
		for _, re := range keywordRe {
			occurrences += len(re.FindAllStringIndex(c.Content, -1))
		}
		density := float64(occurrences) / float64(len(strings.Fields(c.Content))+1)
		score += density * densityBoostFactor

		if definitional {
			for _, re := range v.definitionRe {
				if re.MatchString(c.Content) {
					score += definitionBoost
					break
				}
			}
		}

		for _, marker := range v.raw.OverviewMarkers {
			if strings.Contains(contentLower, marker) {
				score += overviewBoost
				break
			}
		}

		if v.anchorRe != nil && len(v.anchorRe.FindAllStringIndex(c.Content, -1)) > primaryTopicThreshold {
			score += primaryTopicBoost
		}

		window := contentLower
		if len(window) > fuzzyWindow {
			window = window[:fuzzyWindow]
		}
		score += sequenceRatio(queryLower, window) * fuzzyBoostFactor

		results = append(results, domain.ScoredCandidate{
			ID:     c.ID,
			Score:  score,
			Signal: domain.SignalCombined,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// sequenceRatio is the classic matching-blocks similarity: twice the total
// length of the recursively longest common substrings over the combined
// length. Bounded to [0,1]; two empty strings are identical.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedRunes(ra, rb)) / float64(total)
}

func matchedRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Longest common substring via single-row dynamic programming.
	bestLen, bestA, bestB := 0, 0, 0
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			current := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
				if row[j] > bestLen {
					bestLen = row[j]
					bestA = i - row[j]
					bestB = j - row[j]
				}
			} else {
				row[j] = 0
			}
			prev = current
		}
	}
	if bestLen == 0 {
		return 0
	}

	return bestLen +
		matchedRunes(a[:bestA], b[:bestB]) +
		matchedRunes(a[bestA+bestLen:], b[bestB+bestLen:])
}
