package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaults(t *testing.T) {
	cfg := Load()
	if cfg.VectorTopK != 15 {
		t.Fatalf("expected default vector top-k 15, got %d", cfg.VectorTopK)
	}
	if cfg.VectorWeight != 0.7 {
		t.Fatalf("expected default vector weight 0.7, got %f", cfg.VectorWeight)
	}
	if cfg.NATSSubject != "corpus.refresh" {
		t.Fatalf("expected default nats subject, got %s", cfg.NATSSubject)
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_VECTOR_WEIGHT", "0.5")
	t.Setenv("RETRIEVAL_FUSED_TOP_K", "20")

	cfg := Load()
	if cfg.VectorWeight != 0.5 {
		t.Fatalf("expected vector weight 0.5, got %f", cfg.VectorWeight)
	}
	if cfg.FusedTopK != 20 {
		t.Fatalf("expected fused top-k 20, got %d", cfg.FusedTopK)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("RETRIEVAL_VECTOR_TOP_K", "not-a-number")
	cfg := Load()
	if cfg.VectorTopK != 15 {
		t.Fatalf("expected fallback 15 for malformed env, got %d", cfg.VectorTopK)
	}
}

func TestDefaultVocabularyHasCoreTables(t *testing.T) {
	vocab := DefaultVocabulary()
	if vocab.Acronyms["eidbi"] == "" {
		t.Fatalf("expected eidbi acronym expansion")
	}
	if vocab.AnchorTerm != "eidbi" {
		t.Fatalf("expected anchor term eidbi, got %s", vocab.AnchorTerm)
	}
	if len(vocab.DefinitionPatterns) == 0 {
		t.Fatalf("expected definition patterns")
	}
}

func TestLoadVocabularyFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	content := `
anchor_term: pca
anchor_display: PCA
acronyms:
  pca: personal care assistance
quantity_words: ["how many"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write vocab file: %v", err)
	}

	vocab, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary() error = %v", err)
	}
	if vocab.AnchorTerm != "pca" {
		t.Fatalf("expected overridden anchor term, got %s", vocab.AnchorTerm)
	}
	if vocab.Acronyms["pca"] != "personal care assistance" {
		t.Fatalf("expected overridden acronym table, got %v", vocab.Acronyms)
	}
	// Untouched sections keep their defaults.
	if len(vocab.StopWords) == 0 {
		t.Fatalf("expected default stop words to survive partial override")
	}
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	if _, err := LoadVocabulary("/nonexistent/vocab.yaml"); err == nil {
		t.Fatalf("expected error for missing vocabulary file")
	}
}
