package domain

// Signal identifies which retrieval method produced a candidate score.
type Signal string

const (
	SignalVector     Signal = "vector"
	SignalKeyword    Signal = "keyword"
	SignalStructured Signal = "structured"
	SignalCombined   Signal = "combined"
)

// ScoredCandidate is one passage or fact id with a signal-relative score.
// Scores are only comparable within one signal until fusion normalizes them.
type ScoredCandidate struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Signal Signal  `json:"signal"`
}

// QueryExpansion is the per-request output of the query expander. Variants
// always start with the original query; Keywords preserve first-seen order so
// downstream scoring stays deterministic.
type QueryExpansion struct {
	Variants []string `json:"variants"`
	Keywords []string `json:"keywords"`
}

// SearchOptions are the caller-supplied mode flags for one retrieval request.
type SearchOptions struct {
	Hybrid bool `json:"hybrid"`
	Rerank bool `json:"rerank"`
}

// RankedPassage is a hydrated, final-ranked retrieval result.
type RankedPassage struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	Title     string  `json:"title,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
	Score     float64 `json:"score"`
	Signal    Signal  `json:"signal"`
}

// RetrievalResult is the ordered outcome of the full pipeline for one query.
// An empty Passages slice is a normal total-miss outcome, not an error: the
// caller falls back to an ungrounded response path.
type RetrievalResult struct {
	Query    string          `json:"query"`
	Passages []RankedPassage `json:"passages"`
	Keywords []string        `json:"keywords"`
}

// Answer is the caller-facing response: generated text plus its sources.
type Answer struct {
	Query   string          `json:"query"`
	Text    string          `json:"text"`
	Sources []RankedPassage `json:"sources"`
	Cached  bool            `json:"cached"`
}
