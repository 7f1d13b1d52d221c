package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
)

// Store publishes the current corpus snapshot. Reload swaps a single pointer,
// so readers holding the previous snapshot keep a consistent view; nothing is
// mutated in place.
type Store struct {
	passages ports.PassageSource
	facts    ports.FactSource

	current atomic.Pointer[Snapshot]
}

func NewStore(passages ports.PassageSource, facts ports.FactSource) *Store {
	s := &Store{
		passages: passages,
		facts:    facts,
	}
	s.current.Store(NewSnapshot(nil, nil))
	return s
}

// Current returns the active snapshot. Never nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload pulls fresh passage and fact snapshots from the sources and swaps
// them in atomically. On failure the previous snapshot stays active.
func (s *Store) Reload(ctx context.Context) error {
	start := time.Now()

	passages, err := s.passages.LoadPassages(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrSnapshotLoad, "load passages", err)
	}
	facts, err := s.facts.LoadFacts(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrSnapshotLoad, "load facts", err)
	}

	snapshot := NewSnapshot(passages, facts)
	skipped := 0
	for _, p := range snapshot.Passages {
		if p.HasEmbedding() && !snapshot.VectorEligible(p) {
			skipped++
		}
	}
	if skipped > 0 {
		slog.Warn("corpus_reload_dimension_mismatch",
			"skipped_passages", skipped,
			"dimension", snapshot.Dimension,
		)
	}

	s.current.Store(snapshot)
	slog.Info("corpus_reload",
		"passages", len(snapshot.Passages),
		"facts", len(snapshot.Facts),
		"dimension", snapshot.Dimension,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return nil
}

// Describe summarizes the active snapshot for the stats endpoint.
func (s *Store) Describe() string {
	snap := s.Current()
	return fmt.Sprintf("passages=%d facts=%d dimension=%d", len(snap.Passages), len(snap.Facts), snap.Dimension)
}
