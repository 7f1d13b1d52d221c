package usecase

import (
	"time"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// Observer receives pipeline telemetry. The metrics package provides the
// production implementation; the zero observer is used in tests.
type Observer interface {
	QueryServed(opts domain.SearchOptions, cached bool, sources int, duration time.Duration)
	CacheLookup(hit bool)
	EmbeddingFailure()
	SignalCandidates(signal domain.Signal, count int)
}

type nopObserver struct{}

func (nopObserver) QueryServed(domain.SearchOptions, bool, int, time.Duration) {}
func (nopObserver) CacheLookup(bool)                                           {}
func (nopObserver) EmbeddingFailure()                                          {}
func (nopObserver) SignalCandidates(domain.Signal, int)                        {}
