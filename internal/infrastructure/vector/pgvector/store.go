package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kirillkom/context-store/internal/core/domain"
)

// Store keeps item vectors in Postgres next to the item rows.
type Store struct {
	db        *sql.DB
	dimension int
	now       func() time.Time
}

func New(db *sql.DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension, now: time.Now}
}

const (
	// TableName is the vector table reported as the collection name.
	TableName = "context_item_vectors"

	schemaLockKey int64 = 2026101502
)

func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("pgvector: embedding dimension must be positive")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vector schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire vector schema lock: %w", err)
	}
	query := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS context_item_vectors (
	item_id BIGINT PRIMARY KEY,
	embedding vector(%d) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`, s.dimension)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute vector schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vector schema tx: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, item *domain.ContextItem, vector []float32) error {
	if item == nil || len(vector) == 0 {
		return fmt.Errorf("pgvector upsert: empty item or vector")
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return fmt.Errorf("pgvector upsert: vector dimension %d, want %d", len(vector), s.dimension)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO context_item_vectors (item_id, embedding, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (item_id) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at
`, item.ID, pgvector.NewVector(vector), s.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert item vector: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, itemID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM context_item_vectors WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("delete item vector: %w", err)
	}
	return nil
}

// Search orders by cosine distance and reports 1 - distance as the score.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT item_id, 1 - (embedding <=> $1) AS score
FROM context_item_vectors
ORDER BY embedding <=> $1
LIMIT $2
`, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("search item vectors: %w", err)
	}
	defer rows.Close()

	out := make([]domain.VectorHit, 0, k)
	for rows.Next() {
		var hit domain.VectorHit
		if err := rows.Scan(&hit.ItemID, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan vector hit: %w", err)
		}
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector hits: %w", err)
	}
	return out, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE context_item_vectors`); err != nil {
		return fmt.Errorf("truncate item vectors: %w", err)
	}
	return nil
}
