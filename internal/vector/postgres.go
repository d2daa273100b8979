// File path: internal/vector/postgres.go
package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/sentinela-id/sentinela/internal/common"
	"github.com/sentinela-id/sentinela/internal/common/telemetry"
)

// PostgresStore persists scope vectors in a single pgvector table. Rows
// survive process restarts; the count probe is a real query.
type PostgresStore struct {
	db  *sqlx.DB
	cfg PostgresConfig
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("vector: open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("vector: ping postgres: %w", err)
	}

	store := &PostgresStore{db: db, cfg: cfg}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("vector: postgres store ready", "table", cfg.Table, "dim", cfg.Dim)
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			scope_key TEXT NOT NULL,
			chunk_text TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.cfg.Table, s.cfg.Dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_scope_key_idx ON %s (scope_key)`, s.cfg.Table, s.cfg.Table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("vector: ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Scope(key string) Index {
	return &postgresIndex{store: s, scope: key}
}

// Close releases the shared connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type postgresIndex struct {
	store *PostgresStore
	scope string
}

func (p *postgresIndex) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE scope_key = $1`, p.store.cfg.Table)
	var count int
	if err := p.store.db.GetContext(ctx, &count, query, p.scope); err != nil {
		return 0, fmt.Errorf("vector: count scope %q: %w", p.scope, err)
	}
	return count, nil
}

func (p *postgresIndex) Add(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("vector: %d documents but %d vectors", len(docs), len(vectors))
	}
	tx, err := p.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vector: begin insert: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		`INSERT INTO %s (scope_key, chunk_text, embedding, metadata) VALUES ($1, $2, $3, $4)`,
		p.store.cfg.Table,
	)
	for i, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("vector: marshal metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, p.scope, doc.Text, pgvector.NewVector(vectors[i]), metadata); err != nil {
			return fmt.Errorf("vector: insert chunk %d for scope %q: %w", i, p.scope, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vector: commit insert: %w", err)
	}
	return nil
}

func (p *postgresIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	start := time.Now()
	stmt := fmt.Sprintf(`
		SELECT chunk_text, metadata, 1 - (embedding <=> $2) AS similarity
		FROM %s
		WHERE scope_key = $1
		ORDER BY embedding <=> $2, id ASC
		LIMIT $3`, p.store.cfg.Table)

	rows, err := p.store.db.QueryxContext(ctx, stmt, p.scope, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("vector: search scope %q: %w", p.scope, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			text       string
			metadata   []byte
			similarity float32
		)
		if err := rows.Scan(&text, &metadata, &similarity); err != nil {
			return nil, fmt.Errorf("vector: scan search row: %w", err)
		}
		match := Match{Document: Document{Text: text}, Similarity: similarity}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &match.Metadata); err != nil {
				return nil, fmt.Errorf("vector: decode metadata: %w", err)
			}
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector: iterate search rows: %w", err)
	}
	telemetry.RecordVectorSearch(time.Since(start))
	return matches, nil
}

func (p *postgresIndex) Purge(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE scope_key = $1`, p.store.cfg.Table)
	if _, err := p.store.db.ExecContext(ctx, query, p.scope); err != nil {
		return fmt.Errorf("vector: purge scope %q: %w", p.scope, err)
	}
	return nil
}
