package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// FactRepository persists curated key facts (provider counts, rates, program
// figures) loaded from spreadsheet exports.
type FactRepository struct {
	db *sql.DB
}

func NewFactRepository(db *sql.DB) *FactRepository {
	return &FactRepository{db: db}
}

func (r *FactRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026021003)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS facts (
	id TEXT PRIMARY KEY,
	category TEXT,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	source TEXT,
	source_url TEXT,
	last_updated TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facts_category ON facts(category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *FactRepository) LoadFacts(ctx context.Context) ([]domain.Fact, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, COALESCE(category, ''), key, value, COALESCE(source, ''), COALESCE(source_url, ''), last_updated
FROM facts
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		var f domain.Fact
		if err := rows.Scan(&f.ID, &f.Category, &f.Key, &f.Value, &f.Source, &f.SourceURL, &f.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

func (r *FactRepository) UpsertFacts(ctx context.Context, facts []domain.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, f := range facts {
		lastUpdated := f.LastUpdated
		if lastUpdated.IsZero() {
			lastUpdated = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO facts (id, category, key, value, source, source_url, last_updated)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
SET category = EXCLUDED.category,
    key = EXCLUDED.key,
    value = EXCLUDED.value,
    source = EXCLUDED.source,
    source_url = EXCLUDED.source_url,
    last_updated = EXCLUDED.last_updated
`, f.ID, f.Category, f.Key, f.Value, f.Source, f.SourceURL, lastUpdated)
		if err != nil {
			return fmt.Errorf("upsert fact %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}
