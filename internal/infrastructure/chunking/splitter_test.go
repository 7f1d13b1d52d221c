package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(100, 10)
	chunks := s.Split("The EIDBI benefit serves children with autism.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 10)
	if chunks := s.Split("   "); chunks != nil {
		t.Fatalf("expected nil for blank text, got %v", chunks)
	}
}

func TestSplitSnapsToSentenceBoundary(t *testing.T) {
	s := NewSplitter(40, 0)
	text := "First sentence here. Second sentence follows after it. Third one."
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Fatalf("chunk should end at a sentence boundary, got %q", chunks[0])
	}
}

func TestSplitNeverBreaksMidWord(t *testing.T) {
	s := NewSplitter(30, 5)
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"
	for _, chunk := range s.Split(text) {
		for _, word := range strings.Fields(chunk) {
			if !strings.Contains(text, word) {
				t.Fatalf("chunk %q contains split word %q", chunk, word)
			}
		}
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	s := NewSplitter(50, 20)
	text := strings.Repeat("EIDBI services include intervention. ", 10)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected overlap to produce multiple chunks, got %d", len(chunks))
	}
	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "EIDBI services include intervention.") {
		t.Fatalf("chunks lost source sentences")
	}
}

func TestSplitUnbrokenTextProgresses(t *testing.T) {
	s := NewSplitter(20, 5)
	chunks := s.Split(strings.Repeat("x", 100))
	if len(chunks) < 4 {
		t.Fatalf("expected forward progress on unbroken text, got %d chunks", len(chunks))
	}
}
