// File path: internal/vector/postgres_test.go
package vector

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newPostgresTestStore connects to the database named by TEST_DATABASE_URL,
// using a throwaway table per run. Skipped when the variable is unset.
func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := PostgresConfig{
		DSN:   dsn,
		Table: fmt.Sprintf("rag_chunks_test_%d", time.Now().UnixNano()),
		Dim:   3,
	}
	cfg.applyDefaults()
	store, err := NewPostgresStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", cfg.Table))
		store.Close()
	})
	return store
}

func TestPostgresIndexRoundTrip(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	idx := store.Scope("11111111-2222-3333-4444-555555555555")

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	docs := []Document{
		{Text: "harga murah", Metadata: map[string]any{"type": "harga"}},
		{Text: "layanan cepat", Metadata: map[string]any{"type": "layanan"}},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}}
	require.NoError(t, idx.Add(ctx, docs, vectors))

	count, err = idx.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	matches, err := idx.Search(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "layanan cepat", matches[0].Text)
	require.InDelta(t, 1.0, float64(matches[0].Similarity), 1e-4)
	require.Equal(t, "layanan", matches[0].Metadata["type"])

	require.NoError(t, idx.Purge(ctx))
	count, err = idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPostgresScopeIsolation(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()

	first := store.Scope("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	second := store.Scope("ffffffff-0000-1111-2222-333333333333")
	require.NoError(t, first.Add(ctx,
		[]Document{{Text: "milik sesi pertama"}}, [][]float32{{1, 0, 0}}))

	matches, err := second.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)

	count, err := second.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPostgresConfigValidate(t *testing.T) {
	cfg := PostgresConfig{DSN: "postgres://localhost/db", Table: "rag_chunks", Dim: 768}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Table = "rag_chunks; DROP TABLE users"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.DSN = ""
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Dim = 0
	require.Error(t, bad.Validate())
}
