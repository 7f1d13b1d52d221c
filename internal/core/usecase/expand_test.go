package usecase

import (
	"strings"
	"testing"

	"github.com/opencarelab/eidbi-assistant/internal/config"
)

func testVocab() *vocab {
	return compileVocabulary(config.DefaultVocabulary())
}

func TestExpandQueryKeepsOriginalFirst(t *testing.T) {
	expansion := expandQuery(testVocab(), "What is EIDBI?", 10)
	if len(expansion.Variants) == 0 {
		t.Fatalf("expected variants")
	}
	if expansion.Variants[0] != "What is EIDBI?" {
		t.Fatalf("expected original query first, got %q", expansion.Variants[0])
	}
}

func TestExpandQueryAcronymWholeWordOnly(t *testing.T) {
	// "ma" appears only inside "medical" here; no acronym variant applies.
	expansion := expandQuery(testVocab(), "medical billing help", 10)
	for _, variant := range expansion.Variants[1:] {
		if strings.Contains(variant, "Medical Assistance") {
			t.Fatalf("acronym expansion must not trigger on substring match: %q", variant)
		}
	}

	expansion = expandQuery(testVocab(), "does MA cover this", 10)
	found := false
	for _, variant := range expansion.Variants {
		if strings.Contains(variant, "Medical Assistance") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected whole-word MA to expand, got %v", expansion.Variants)
	}
}

func TestExpandQueryCapsAndDeduplicates(t *testing.T) {
	expansion := expandQuery(testVocab(), "What is EIDBI?", 10)
	if len(expansion.Variants) > 10 {
		t.Fatalf("expected at most 10 variants, got %d", len(expansion.Variants))
	}
	seen := make(map[string]bool)
	for _, variant := range expansion.Variants {
		if seen[variant] {
			t.Fatalf("duplicate variant %q", variant)
		}
		seen[variant] = true
	}
}

func TestExpandQueryAnchoredDefinitionalCombinations(t *testing.T) {
	expansion := expandQuery(testVocab(), "What is EIDBI?", 10)
	joined := strings.Join(expansion.Variants, "|")
	if !strings.Contains(joined, "definition of EIDBI") {
		t.Fatalf("expected anchor-centric definitional variant, got %v", expansion.Variants)
	}
}

func TestExpandQueryShortAnchorQueryGetsContext(t *testing.T) {
	expansion := expandQuery(testVocab(), "EIDBI services", 10)
	found := false
	for _, variant := range expansion.Variants {
		if strings.Contains(variant, "Minnesota Health Care Program") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected domain context variant for short anchor query, got %v", expansion.Variants)
	}
}

func TestExpandQueryEmptyInput(t *testing.T) {
	expansion := expandQuery(testVocab(), "", 10)
	if len(expansion.Variants) != 1 || expansion.Variants[0] != "" {
		t.Fatalf("expected single empty variant, got %v", expansion.Variants)
	}
	if len(expansion.Keywords) != 0 {
		t.Fatalf("expected no keywords, got %v", expansion.Keywords)
	}
}

func TestExtractKeywordsDropsStopWordsAndExpandsAcronyms(t *testing.T) {
	expansion := expandQuery(testVocab(), "What is the EIDBI benefit?", 10)

	for _, kw := range expansion.Keywords {
		if kw == "what" || kw == "is" || kw == "the" {
			t.Fatalf("stop word %q leaked into keywords", kw)
		}
	}

	hasAcronym, hasFullForm := false, false
	for _, kw := range expansion.Keywords {
		if kw == "eidbi" {
			hasAcronym = true
		}
		if kw == "Early Intensive Developmental and Behavioral Intervention" {
			hasFullForm = true
		}
	}
	if !hasAcronym || !hasFullForm {
		t.Fatalf("expected acronym and its full form in keywords, got %v", expansion.Keywords)
	}
}

func TestExtractKeywordsFindsDomainPhrases(t *testing.T) {
	expansion := expandQuery(testVocab(), "is autism spectrum disorder covered", 10)
	found := false
	for _, kw := range expansion.Keywords {
		if kw == "autism spectrum disorder" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected verbatim phrase keyword, got %v", expansion.Keywords)
	}
}

func TestExpandQueryDeterministic(t *testing.T) {
	first := expandQuery(testVocab(), "What is EIDBI provider cost?", 10)
	second := expandQuery(testVocab(), "What is EIDBI provider cost?", 10)
	if strings.Join(first.Variants, "|") != strings.Join(second.Variants, "|") {
		t.Fatalf("variants differ across runs:\n%v\n%v", first.Variants, second.Variants)
	}
	if strings.Join(first.Keywords, "|") != strings.Join(second.Keywords, "|") {
		t.Fatalf("keywords differ across runs")
	}
}
