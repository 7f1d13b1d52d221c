// Package corpus owns the in-memory, read-mostly corpus state: one immutable
// snapshot of passages and facts, republished wholesale on reload so in-flight
// queries never observe a partially updated corpus.
package corpus

import (
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// Snapshot is an immutable view of the loaded corpus. Dimension is the
// embedding dimensionality observed at load time; passages whose embedding
// length differs are kept for keyword search but excluded from vector
// scoring.
type Snapshot struct {
	Passages  []domain.Passage
	Facts     []domain.Fact
	Dimension int

	passageByID map[string]int
	factByID    map[string]int
}

// NewSnapshot builds a snapshot from loader output. The first passage with a
// non-empty embedding fixes the corpus-wide dimensionality.
func NewSnapshot(passages []domain.Passage, facts []domain.Fact) *Snapshot {
	dimension := 0
	for _, p := range passages {
		if p.HasEmbedding() {
			dimension = len(p.Embedding)
			break
		}
	}
	snap := &Snapshot{
		Passages:    passages,
		Facts:       facts,
		Dimension:   dimension,
		passageByID: make(map[string]int, len(passages)),
		factByID:    make(map[string]int, len(facts)),
	}
	for i, p := range passages {
		if _, dup := snap.passageByID[p.ID]; !dup {
			snap.passageByID[p.ID] = i
		}
	}
	for i, f := range facts {
		if _, dup := snap.factByID[f.ID]; !dup {
			snap.factByID[f.ID] = i
		}
	}
	return snap
}

// PassageByID resolves a passage id within this snapshot.
func (s *Snapshot) PassageByID(id string) (domain.Passage, bool) {
	i, ok := s.passageByID[id]
	if !ok {
		return domain.Passage{}, false
	}
	return s.Passages[i], true
}

// FactByID resolves a fact id within this snapshot.
func (s *Snapshot) FactByID(id string) (domain.Fact, bool) {
	i, ok := s.factByID[id]
	if !ok {
		return domain.Fact{}, false
	}
	return s.Facts[i], true
}

// VectorEligible reports whether the passage participates in vector search
// within this snapshot.
func (s *Snapshot) VectorEligible(p domain.Passage) bool {
	return p.HasEmbedding() && len(p.Embedding) == s.Dimension
}

func (s *Snapshot) Empty() bool {
	return len(s.Passages) == 0 && len(s.Facts) == 0
}
