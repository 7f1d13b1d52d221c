package domain

// Passage is the unit of retrieval and ranking: one scraped or ingested chunk
// of text, optionally carrying a precomputed embedding. Passages are immutable
// for the lifetime of a corpus snapshot.
type Passage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the passage is eligible for vector search.
func (p Passage) HasEmbedding() bool {
	return len(p.Embedding) > 0
}
