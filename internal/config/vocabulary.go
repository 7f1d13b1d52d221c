package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the content side of query expansion and reranking: acronym
// tables, trigger phrases, boost word lists. The scoring mechanics live in
// the usecase package; everything here is tuning data and can be replaced
// wholesale from a YAML file without touching code.
type Vocabulary struct {
	// Acronyms maps a lowercase acronym to its full form.
	Acronyms map[string]string `yaml:"acronyms"`

	// Expansions maps a contextual trigger phrase to query expansions.
	Expansions map[string][]string `yaml:"expansions"`

	// AnchorTerm is the domain subject whose presence drives the short-query
	// context rule and the topic-dominance rerank boost. AnchorDisplay is the
	// form injected into generated variants.
	AnchorTerm    string `yaml:"anchor_term"`
	AnchorDisplay string `yaml:"anchor_display"`

	// DefinitionTriggers mark a query as definitional ("what is", ...).
	DefinitionTriggers []string `yaml:"definition_triggers"`

	// ContextVariants are appended to short queries containing the anchor.
	ContextVariants []string `yaml:"context_variants"`

	StopWords []string `yaml:"stop_words"`

	// Phrases are multi-word terms extracted verbatim as keywords.
	Phrases []string `yaml:"phrases"`

	// QuantityWords and EntityTerms drive the structured-search boost for
	// quantity questions against curated facts.
	QuantityWords []string `yaml:"quantity_words"`
	EntityTerms   []string `yaml:"entity_terms"`

	// DefinitionPatterns are regular expressions matched against passage
	// content for the definitional rerank boost.
	DefinitionPatterns []string `yaml:"definition_patterns"`

	// OverviewMarkers flag introductory content for the overview boost.
	OverviewMarkers []string `yaml:"overview_markers"`
}

// DefaultVocabulary returns the built-in EIDBI vocabulary, mirroring the
// curated tables shipped with the production corpus.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Acronyms: map[string]string{
			"eidbi": "Early Intensive Developmental and Behavioral Intervention",
			"asd":   "autism spectrum disorder",
			"cmde":  "comprehensive multi-disciplinary evaluation",
			"qsp":   "qualified supervising professional",
			"ma":    "Medical Assistance",
			"mhcp":  "Minnesota Health Care Program",
			"tefra": "Tax Equity and Fiscal Responsibility Act",
		},
		Expansions: map[string][]string{
			"what is":  {"definition of", "explain", "overview of", "describe"},
			"eligible": {"eligibility", "qualify", "requirements", "who can receive"},
			"provider": {"provider requirements", "become a provider", "provider types", "QSP", "qualified supervising professional"},
			"services": {"treatment", "intervention", "therapy", "support"},
			"cost":     {"payment", "insurance", "coverage", "Medical Assistance", "MA"},
		},
		AnchorTerm:         "eidbi",
		AnchorDisplay:      "EIDBI",
		DefinitionTriggers: []string{"what is", "definition"},
		ContextVariants: []string{
			"Minnesota Health Care Program",
			"autism spectrum disorder",
			"benefit program services",
		},
		StopWords: []string{
			"is", "are", "what", "who", "where", "when", "how", "the", "a",
			"an", "and", "or", "but", "in", "on", "at", "to", "for", "of",
			"with", "can", "do", "does", "get", "i", "my", "me",
		},
		Phrases: []string{
			"early intensive developmental and behavioral intervention",
			"autism spectrum disorder",
			"minnesota health care program",
			"medical assistance",
			"comprehensive multi-disciplinary evaluation",
		},
		QuantityWords: []string{"count", "number", "total", "how many"},
		EntityTerms:   []string{"provider"},
		DefinitionPatterns: []string{
			`(is|are)\s+a\s+\w+`,
			`definition\s+of`,
			`refers?\s+to`,
			`means?\s+that`,
			`benefit\s+is\s+a`,
			`program\s+that`,
		},
		OverviewMarkers: []string{
			"overview", "introduction", "what is", "about",
			"benefit page", "program overview", "general information",
		},
	}
}

// LoadVocabulary returns the built-in vocabulary, replaced by the YAML file
// at path when one is configured.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	vocab := DefaultVocabulary()
	if err := yaml.Unmarshal(raw, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary yaml: %w", err)
	}
	return vocab, nil
}
