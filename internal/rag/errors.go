// File path: internal/rag/errors.go
package rag

import "errors"

var (
	// ErrNotReady is returned by every entry point until Initialize has
	// finished building the global index.
	ErrNotReady = errors.New("rag: chain not ready")

	// ErrDataLoad indicates the scope's dataset could not be read or parsed.
	ErrDataLoad = errors.New("rag: dataset load failed")

	// ErrEmbeddingUnavailable indicates the embedding provider failed.
	ErrEmbeddingUnavailable = errors.New("rag: embedding unavailable")

	// ErrGeneration indicates the language model call failed.
	ErrGeneration = errors.New("rag: generation failed")

	// ErrEmptyQuestion indicates a blank question reached the chain.
	ErrEmptyQuestion = errors.New("rag: question must not be empty")
)
