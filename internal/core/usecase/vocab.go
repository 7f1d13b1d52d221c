package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/config"
)

// vocab is the compiled form of config.Vocabulary: word-boundary regexps
// built once, map keys frozen into sorted slices so every pass over the
// tables is deterministic.
type vocab struct {
	raw config.Vocabulary

	acronymKeys []string
	acronymRe   map[string]*regexp.Regexp

	expansionKeys []string

	stopWords map[string]struct{}

	anchorRe     *regexp.Regexp
	anchorFull   string
	definitionRe []*regexp.Regexp
}

func compileVocabulary(raw config.Vocabulary) *vocab {
	v := &vocab{
		raw:       raw,
		acronymRe: make(map[string]*regexp.Regexp, len(raw.Acronyms)),
		stopWords: make(map[string]struct{}, len(raw.StopWords)),
	}

	for acronym := range raw.Acronyms {
		v.acronymKeys = append(v.acronymKeys, acronym)
		v.acronymRe[acronym] = wholeWordPattern(acronym)
	}
	sort.Strings(v.acronymKeys)

	for trigger := range raw.Expansions {
		v.expansionKeys = append(v.expansionKeys, trigger)
	}
	sort.Strings(v.expansionKeys)

	for _, w := range raw.StopWords {
		v.stopWords[strings.ToLower(w)] = struct{}{}
	}

	if raw.AnchorTerm != "" {
		v.anchorRe = wholeWordPattern(raw.AnchorTerm)
		v.anchorFull = raw.Acronyms[strings.ToLower(raw.AnchorTerm)]
	}

	for _, pattern := range raw.DefinitionPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		v.definitionRe = append(v.definitionRe, re)
	}

	return v
}

func (v *vocab) isStopWord(token string) bool {
	_, ok := v.stopWords[token]
	return ok
}

func (v *vocab) isQuantityWord(keyword string) bool {
	for _, w := range v.raw.QuantityWords {
		if strings.EqualFold(keyword, w) {
			return true
		}
	}
	return false
}

func (v *vocab) keyHasEntityTerm(key string) bool {
	lower := strings.ToLower(key)
	for _, term := range v.raw.EntityTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func (v *vocab) isDefinitionalQuery(queryLower string) bool {
	for _, trigger := range v.raw.DefinitionTriggers {
		if strings.Contains(queryLower, trigger) {
			return true
		}
	}
	return false
}

// wholeWordPattern matches term as a whole word, case-insensitively, so "ma"
// never matches inside "medical".
func wholeWordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
