package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// PassageRepository persists document passages and their embeddings.
// Embeddings are stored as JSONB arrays; the corpus is small enough that
// retrieval scans an in-memory snapshot, never the table.
type PassageRepository struct {
	db *sql.DB
}

func NewPassageRepository(db *sql.DB) *PassageRepository {
	return &PassageRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PassageRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/ingest startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026021002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS passages (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	title TEXT,
	source_url TEXT,
	embedding JSONB,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// LoadPassages returns the full passage corpus in primary key order, which
// keeps snapshot order stable across reloads.
func (r *PassageRepository) LoadPassages(ctx context.Context) ([]domain.Passage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, content, COALESCE(title, ''), COALESCE(source_url, ''), embedding
FROM passages
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		var embeddingRaw []byte
		if err := rows.Scan(&p.ID, &p.Content, &p.Title, &p.SourceURL, &embeddingRaw); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		if len(embeddingRaw) > 0 {
			if err := json.Unmarshal(embeddingRaw, &p.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding for %s: %w", p.ID, err)
			}
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passages: %w", err)
	}
	return passages, nil
}

// UpsertPassages writes a batch in one transaction, replacing rows with the
// same id. The ingest pipeline calls this per source document.
func (r *PassageRepository) UpsertPassages(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, p := range passages {
		var embeddingJSON any
		if p.HasEmbedding() {
			raw, err := json.Marshal(p.Embedding)
			if err != nil {
				return fmt.Errorf("marshal embedding for %s: %w", p.ID, err)
			}
			embeddingJSON = raw
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO passages (id, content, title, source_url, embedding, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE
SET content = EXCLUDED.content,
    title = EXCLUDED.title,
    source_url = EXCLUDED.source_url,
    embedding = EXCLUDED.embedding,
    updated_at = EXCLUDED.updated_at
`, p.ID, p.Content, p.Title, p.SourceURL, embeddingJSON, now)
		if err != nil {
			return fmt.Errorf("upsert passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}
