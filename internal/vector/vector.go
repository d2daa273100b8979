// File path: internal/vector/vector.go
package vector

import "context"

// Document is one stored chunk: its text and the metadata inherited from the
// formatted parent document.
type Document struct {
	Text     string
	Metadata map[string]any
}

// Match is a search hit. Similarity is cosine similarity in [-1, 1], 1 being
// an exact directional match.
type Match struct {
	Document
	Similarity float32
}

// Index is one scope's vector collection. Count is the existence probe used
// to decide whether a build may reuse persisted rows.
type Index interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, docs []Document, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	Purge(ctx context.Context) error
}

// Store hands out per-scope indexes. Implementations must be safe for
// concurrent use across scopes.
type Store interface {
	Scope(key string) Index
}
