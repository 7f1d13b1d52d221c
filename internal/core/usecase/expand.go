package usecase

import (
	"regexp"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

const defaultMaxVariants = 10

var keywordCleaner = regexp.MustCompile(`[^\w\s-]`)

// expandQuery broadens a raw query into bounded variants plus extracted
// keywords. Pure and total: an empty query yields the original as its only
// variant and no keywords.
func expandQuery(v *vocab, query string, maxVariants int) domain.QueryExpansion {
	if maxVariants <= 0 {
		maxVariants = defaultMaxVariants
	}

	queryLower := strings.ToLower(query)
	variants := []string{query}

	// Acronym broadening: replace the acronym in place, and append the full
	// form to the original. Whole-word matching only.
	for _, acronym := range v.acronymKeys {
		re := v.acronymRe[acronym]
		if !re.MatchString(query) {
			continue
		}
		full := v.raw.Acronyms[acronym]
		variants = append(variants, re.ReplaceAllString(query, full))
		variants = append(variants, query+" "+full)
	}

	// Contextual trigger phrases. Definitional triggers co-occurring with the
	// anchor term get dedicated anchor-centric combinations.
	for _, trigger := range v.expansionKeys {
		if !strings.Contains(queryLower, trigger) {
			continue
		}
		anchored := v.isDefinitionalQuery(trigger) && v.anchorRe != nil && v.anchorRe.MatchString(query)
		for _, expansion := range v.raw.Expansions[trigger] {
			if anchored {
				variants = append(variants,
					expansion+" "+v.raw.AnchorDisplay,
					v.raw.AnchorDisplay+" "+expansion,
				)
				if v.anchorFull != "" {
					variants = append(variants, expansion+" "+v.anchorFull)
				}
				continue
			}
			variants = append(variants, query+" "+expansion)
		}
	}

	// Short anchor queries get domain context appended.
	if len(strings.Fields(query)) <= 3 && v.anchorRe != nil && v.anchorRe.MatchString(query) {
		for _, context := range v.raw.ContextVariants {
			variants = append(variants, query+" "+context)
		}
	}

	variants = dedupeStrings(variants)
	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}

	return domain.QueryExpansion{
		Variants: variants,
		Keywords: extractKeywords(v, query),
	}
}

func extractKeywords(v *vocab, query string) []string {
	queryLower := strings.ToLower(query)
	var keywords []string

	for _, word := range strings.Fields(queryLower) {
		cleaned := keywordCleaner.ReplaceAllString(word, "")
		if cleaned == "" || v.isStopWord(cleaned) {
			continue
		}
		keywords = append(keywords, cleaned)
		if full, ok := v.raw.Acronyms[cleaned]; ok {
			keywords = append(keywords, full)
		}
	}

	for _, phrase := range v.raw.Phrases {
		if strings.Contains(queryLower, phrase) {
			keywords = append(keywords, phrase)
		}
	}

	return dedupeStrings(keywords)
}

// dedupeStrings removes exact duplicates preserving first-seen order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
