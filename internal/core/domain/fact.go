package domain

import "time"

// Fact is a curated structured key/value record, independent of free-text
// passages. Keys are free text and not unique: historical updates to the same
// key coexist and search returns all of them, newest resolvable through
// LastUpdated.
type Fact struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}
