// File path: internal/vector/memory.go
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sentinela-id/sentinela/internal/common/telemetry"
)

// MemoryStore keeps every scope's vectors in process memory. Used for the
// global reference scope, which is rebuilt on every process start.
type MemoryStore struct {
	mu     sync.Mutex
	scopes map[string]*memoryIndex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]*memoryIndex)}
}

func (s *MemoryStore) Scope(key string) Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.scopes[key]
	if !ok {
		idx = &memoryIndex{}
		s.scopes[key] = idx
	}
	return idx
}

type memoryIndex struct {
	mu      sync.RWMutex
	docs    []Document
	vectors [][]float32
}

func (m *memoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (m *memoryIndex) Add(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("vector: %d documents but %d vectors", len(docs), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

func (m *memoryIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	start := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		pos        int
		similarity float32
	}
	results := make([]scored, 0, len(m.vectors))
	for i, vec := range m.vectors {
		results = append(results, scored{pos: i, similarity: cosineSimilarity(query, vec)})
	}
	// Stable sort keeps insertion order for equal similarities.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].similarity > results[j].similarity
	})
	if k > len(results) {
		k = len(results)
	}
	matches := make([]Match, 0, k)
	for _, r := range results[:k] {
		matches = append(matches, Match{Document: m.docs[r.pos], Similarity: r.similarity})
	}
	telemetry.RecordVectorSearch(time.Since(start))
	return matches, nil
}

func (m *memoryIndex) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	m.vectors = nil
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
