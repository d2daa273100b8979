// File path: internal/vector/memory_test.go
package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryIndexSelfRetrieval(t *testing.T) {
	store := NewMemoryStore()
	idx := store.Scope("global")

	docs := []Document{
		{Text: "harga sangat murah", Metadata: map[string]any{"type": "a"}},
		{Text: "layanan ramah sekali", Metadata: map[string]any{"type": "b"}},
		{Text: "makanan kurang enak", Metadata: map[string]any{"type": "c"}},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	require.NoError(t, idx.Add(context.Background(), docs, vectors))

	matches, err := idx.Search(context.Background(), []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "layanan ramah sekali", matches[0].Text)
	require.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	require.Equal(t, "b", matches[0].Metadata["type"])
}

func TestMemoryIndexTiesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	idx := store.Scope("global")

	docs := []Document{{Text: "pertama"}, {Text: "kedua"}, {Text: "ketiga"}}
	same := []float32{1, 1, 0}
	require.NoError(t, idx.Add(context.Background(), docs, [][]float32{same, same, same}))

	matches, err := idx.Search(context.Background(), []float32{1, 1, 0}, 3)
	require.NoError(t, err)
	require.Equal(t, "pertama", matches[0].Text)
	require.Equal(t, "kedua", matches[1].Text)
	require.Equal(t, "ketiga", matches[2].Text)
}

func TestMemoryIndexKLargerThanSize(t *testing.T) {
	store := NewMemoryStore()
	idx := store.Scope("global")
	require.NoError(t, idx.Add(context.Background(),
		[]Document{{Text: "satu"}}, [][]float32{{1, 0}}))

	matches, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestMemoryIndexCountAndPurge(t *testing.T) {
	store := NewMemoryStore()
	idx := store.Scope("sesi")

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, idx.Add(context.Background(),
		[]Document{{Text: "a"}, {Text: "b"}}, [][]float32{{1}, {0.5}}))
	count, err = idx.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, idx.Purge(context.Background()))
	count, err = idx.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMemoryStoreScopeIsolation(t *testing.T) {
	store := NewMemoryStore()
	global := store.Scope("global")
	session := store.Scope("sesi-123")

	require.NoError(t, global.Add(context.Background(),
		[]Document{{Text: "global saja"}}, [][]float32{{1, 0}}))

	matches, err := session.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)

	// The same key always resolves to the same index.
	count, err := store.Scope("global").Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMemoryIndexMismatchedLengths(t *testing.T) {
	store := NewMemoryStore()
	idx := store.Scope("global")
	err := idx.Add(context.Background(), []Document{{Text: "a"}}, nil)
	require.Error(t, err)
}
