package chunkfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// chunkRecord is one line of a scraper export: a pre-chunked passage,
// usually carrying the embedding computed at scrape time.
type chunkRecord struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Embedding []float32     `json:"embedding"`
	Metadata  chunkMetadata `json:"metadata"`
}

type chunkMetadata struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Reader loads passages from newline-delimited JSON chunk files. Fields
// missing from a record fall back to the reader's source name and URL.
type Reader struct {
	source    string
	sourceURL string
}

func NewReader(source, sourceURL string) *Reader {
	return &Reader{source: source, sourceURL: sourceURL}
}

func (r *Reader) ReadPassages(path string) ([]domain.Passage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chunk file: %w", err)
	}
	defer file.Close()

	var passages []domain.Passage
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec chunkRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", path, line, err)
		}
		if rec.Content == "" {
			continue
		}
		passages = append(passages, r.toPassage(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return passages, nil
}

func (r *Reader) toPassage(rec chunkRecord) domain.Passage {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	title := rec.Metadata.Title
	if title == "" {
		title = r.source
	}
	sourceURL := rec.Metadata.URL
	if sourceURL == "" {
		sourceURL = r.sourceURL
	}
	return domain.Passage{
		ID:        id,
		Content:   rec.Content,
		Title:     title,
		SourceURL: sourceURL,
		Embedding: rec.Embedding,
	}
}
