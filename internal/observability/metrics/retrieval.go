package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// RetrievalMetrics implements the pipeline Observer. All collectors share
// one registry with the HTTP metrics so a single /metrics endpoint exposes
// everything.
type RetrievalMetrics struct {
	service string

	queriesTotal     *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	retrievedSources *prometheus.HistogramVec
	noContextTotal   *prometheus.CounterVec
	cacheLookupTotal *prometheus.CounterVec
	embedFailTotal   *prometheus.CounterVec
	signalCandidates *prometheus.HistogramVec

	corpusPassages prometheus.Gauge
	corpusFacts    prometheus.Gauge
	reloadTotal    *prometheus.CounterVec
}

func NewRetrievalMetrics(service string, registry *prometheus.Registry) *RetrievalMetrics {
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "queries_total",
			Help:      "Total served queries by retrieval mode and cache outcome.",
		},
		[]string{"service", "mode", "cached"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)
	retrievedSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "sources_per_query",
			Help:      "Distribution of cited sources per served query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 12},
		},
		[]string{"service"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "no_context_total",
			Help:      "Total queries answered without any retrieved source.",
		},
		[]string{"service"},
	)
	cacheLookupTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidbi",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)
	embedFailTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "embedding_failures_total",
			Help:      "Total failed query variant embedding calls.",
		},
		[]string{"service"},
	)
	signalCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eidbi",
			Subsystem: "retrieval",
			Name:      "signal_candidates",
			Help:      "Candidates produced per retrieval signal.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "signal"},
	)

	corpusPassages := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "eidbi",
			Subsystem:   "corpus",
			Name:        "passages",
			Help:        "Passages in the active corpus snapshot.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	corpusFacts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "eidbi",
			Subsystem:   "corpus",
			Name:        "facts",
			Help:        "Facts in the active corpus snapshot.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	reloadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidbi",
			Subsystem: "corpus",
			Name:      "reloads_total",
			Help:      "Corpus snapshot reloads by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		queriesTotal,
		queryDuration,
		retrievedSources,
		noContextTotal,
		cacheLookupTotal,
		embedFailTotal,
		signalCandidates,
		corpusPassages,
		corpusFacts,
		reloadTotal,
	)

	return &RetrievalMetrics{
		service:          service,
		queriesTotal:     queriesTotal,
		queryDuration:    queryDuration,
		retrievedSources: retrievedSources,
		noContextTotal:   noContextTotal,
		cacheLookupTotal: cacheLookupTotal,
		embedFailTotal:   embedFailTotal,
		signalCandidates: signalCandidates,
		corpusPassages:   corpusPassages,
		corpusFacts:      corpusFacts,
		reloadTotal:      reloadTotal,
	}
}

func (m *RetrievalMetrics) QueryServed(opts domain.SearchOptions, cached bool, sources int, duration time.Duration) {
	mode := "simple"
	if opts.Hybrid {
		mode = "hybrid"
	}
	m.queriesTotal.WithLabelValues(m.service, mode, boolLabel(cached)).Inc()
	m.queryDuration.WithLabelValues(m.service, mode).Observe(duration.Seconds())
	m.retrievedSources.WithLabelValues(m.service).Observe(float64(sources))
	if sources == 0 {
		m.noContextTotal.WithLabelValues(m.service).Inc()
	}
}

func (m *RetrievalMetrics) CacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupTotal.WithLabelValues(m.service, outcome).Inc()
}

func (m *RetrievalMetrics) EmbeddingFailure() {
	m.embedFailTotal.WithLabelValues(m.service).Inc()
}

func (m *RetrievalMetrics) SignalCandidates(signal domain.Signal, count int) {
	m.signalCandidates.WithLabelValues(m.service, string(signal)).Observe(float64(count))
}

func (m *RetrievalMetrics) SetCorpusSize(passages, facts int) {
	m.corpusPassages.Set(float64(passages))
	m.corpusFacts.Set(float64(facts))
}

func (m *RetrievalMetrics) CorpusReload(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.reloadTotal.WithLabelValues(m.service, outcome).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
