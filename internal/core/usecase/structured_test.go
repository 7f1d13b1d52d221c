package usecase

import (
	"testing"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

func TestSearchFactsSubstringMatch(t *testing.T) {
	facts := []domain.Fact{
		{ID: "f1", Key: "total_eidbi_providers", Value: "328", Source: "DHS Provider Directory"},
		{ID: "f2", Key: "contact_phone", Value: "651-555-0100", Source: "DHS"},
	}

	results := searchFacts(facts, []string{"eidbi"}, testVocab())
	if len(results) != 1 || results[0].ID != "f1" {
		t.Fatalf("expected only f1 matched, got %v", results)
	}
}

func TestSearchFactsKeyMatchBoost(t *testing.T) {
	facts := []domain.Fact{
		{ID: "key-hit", Key: "provider training", Value: "x", Source: "y"},
		{ID: "value-hit", Key: "other", Value: "provider info", Source: "y"},
	}

	results := searchFacts(facts, []string{"training"}, testVocab())
	if len(results) != 1 {
		t.Fatalf("expected one match, got %d", len(results))
	}
	if results[0].Score != keyMatchBoost {
		t.Fatalf("expected key-hit relevance %.1f, got %f", keyMatchBoost, results[0].Score)
	}

	results = searchFacts(facts, []string{"info"}, testVocab())
	if len(results) != 1 || results[0].Score != 1.0 {
		t.Fatalf("expected plain value-hit relevance 1.0, got %v", results)
	}
}

func TestSearchFactsQuantityEntityBoost(t *testing.T) {
	facts := []domain.Fact{
		{ID: "count-fact", Key: "total provider count", Value: "328", Source: "DHS"},
	}

	// "count" is a quantity word and the key contains the entity term
	// "provider", and the keyword also hits the key itself.
	results := searchFacts(facts, []string{"count"}, testVocab())
	if len(results) != 1 {
		t.Fatalf("expected one match, got %d", len(results))
	}
	want := quantityEntityBoost * keyMatchBoost
	if results[0].Score != want {
		t.Fatalf("expected boosted relevance %f, got %f", want, results[0].Score)
	}
}

func TestSearchFactsKeepsMaxAcrossKeywords(t *testing.T) {
	facts := []domain.Fact{
		{ID: "f1", Key: "provider count", Value: "autism services provider count", Source: "DHS"},
	}

	// Both keywords reach f1; relevance must be the max, not the sum.
	results := searchFacts(facts, []string{"count", "autism"}, testVocab())
	if len(results) != 1 {
		t.Fatalf("expected one deduplicated fact, got %d", len(results))
	}
	want := quantityEntityBoost * keyMatchBoost
	if results[0].Score != want {
		t.Fatalf("expected max relevance %f, got %f", want, results[0].Score)
	}
}

func TestSearchFactsSortedDescending(t *testing.T) {
	facts := []domain.Fact{
		{ID: "weak", Key: "notes", Value: "training schedule", Source: "x"},
		{ID: "strong", Key: "training", Value: "x", Source: "x"},
	}

	results := searchFacts(facts, []string{"training"}, testVocab())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "strong" {
		t.Fatalf("expected strongest relevance first, got %s", results[0].ID)
	}
}

func TestSearchFactsEmptyInputs(t *testing.T) {
	if results := searchFacts(nil, []string{"x"}, testVocab()); len(results) != 0 {
		t.Fatalf("expected no results for empty fact store")
	}
	if results := searchFacts([]domain.Fact{{ID: "f"}}, nil, testVocab()); len(results) != 0 {
		t.Fatalf("expected no results for empty keywords")
	}
}
