// File path: internal/rag/chunker.go
package rag

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Separator priority for recursive splitting: paragraph, line, sentence
// punctuation, clause punctuation, word, then hard character cut.
var chunkSeparators = []string{"\n\n", "\n", ".", "!", "?", ";", ",", " ", ""}

// ChunkDocuments splits formatted documents into overlapping windows bounded
// by chunkSize. Metadata is inherited from the parent document unchanged and
// the split is deterministic for identical input.
func ChunkDocuments(docs []schema.Document) ([]schema.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(chunkSeparators),
	)
	chunks, err := textsplitter.SplitDocuments(splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("rag: split documents: %w", err)
	}
	return chunks, nil
}
