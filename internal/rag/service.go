// File path: internal/rag/service.go
package rag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/schema"

	"github.com/sentinela-id/sentinela/internal/common"
	"github.com/sentinela-id/sentinela/internal/common/telemetry"
	"github.com/sentinela-id/sentinela/internal/llm"
	"github.com/sentinela-id/sentinela/internal/vector"
)

// GlobalScope is the reference dataset partition, rebuilt in memory on every
// process start. Every other scope key is a session UUID backed by the
// persistent store.
const GlobalScope = "global"

// topK is fixed per call by contract.
const topK = 5

// DatasetSource supplies the raw JSON dataset bytes for a scope. A missing
// dataset must keep fs.ErrNotExist in the error chain.
type DatasetSource interface {
	Load(scopeKey string) ([]byte, error)
}

// Service owns the retrieval chain: scope index lifecycle, question
// answering and insight composition.
type Service struct {
	logger     *slog.Logger
	provider   llm.Provider
	datasets   DatasetSource
	memory     vector.Store
	persistent vector.Store
	embedPool  *ants.Pool
	batchSize  int

	initialized atomic.Bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	ready map[string]bool
}

// Option configures a Service.
type Option func(*Service) error

// WithEmbedWorkers sets the worker pool size used to fan out embedding
// batches during index builds. Default is runtime.NumCPU() / 2, minimum 1.
func WithEmbedWorkers(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.embedPool != nil {
			s.embedPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.embedPool = pool
		return nil
	}
}

// WithBatchSize sets how many chunk texts go into one embedding call.
func WithBatchSize(size int) Option {
	return func(s *Service) error {
		if size > 0 {
			s.batchSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New wires the service without touching any external system. Call
// Initialize before serving queries.
func New(provider llm.Provider, datasets DatasetSource, memory, persistent vector.Store, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("rag: provider required")
	}
	if datasets == nil {
		return nil, errors.New("rag: dataset source required")
	}
	if memory == nil {
		return nil, errors.New("rag: memory store required")
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:     common.Logger(),
		provider:   provider,
		datasets:   datasets,
		memory:     memory,
		persistent: persistent,
		embedPool:  pool,
		batchSize:  64,
		locks:      make(map[string]*sync.Mutex),
		ready:      make(map[string]bool),
	}
	if s.persistent == nil {
		s.logger.Warn("rag: no persistent vector store configured; session scopes will not survive restarts")
		s.persistent = memory
	}
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Close()
			return nil, optErr
		}
	}
	return s, nil
}

// Initialize builds the global scope index. Entry points fail with
// ErrNotReady until it completes successfully.
func (s *Service) Initialize(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	start := time.Now()
	if err := s.buildIfAbsent(ctx, GlobalScope); err != nil {
		return fmt.Errorf("rag: initialize: %w", err)
	}
	s.initialized.Store(true)
	s.logger.Info("rag: chain initialized", "provider", s.provider.Name(), "dur", time.Since(start))
	return nil
}

// Ready reports whether Initialize has completed.
func (s *Service) Ready() bool {
	return s.initialized.Load()
}

// Close releases the embedding worker pool.
func (s *Service) Close() {
	if s.embedPool != nil {
		s.embedPool.Release()
	}
}

// Answer embeds the question, retrieves the top chunks from the scope's
// index and generates a completion constrained to that context.
func (s *Service) Answer(ctx context.Context, scopeKey, question string) (string, error) {
	if !s.initialized.Load() {
		return "", ErrNotReady
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if err := s.buildIfAbsent(ctx, scopeKey); err != nil {
		return "", err
	}

	ctx, end := telemetry.StartSpan(ctx, "rag.answer")
	defer end("scope", scopeKey)

	queryVec, err := s.provider.EmbedQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	matches, err := s.indexFor(scopeKey).Search(ctx, queryVec, topK)
	if err != nil {
		return "", fmt.Errorf("rag: search scope %q: %w", scopeKey, err)
	}
	contexts := make([]string, 0, len(matches))
	for _, match := range matches {
		contexts = append(contexts, match.Text)
	}
	prompt, err := answerTemplate.Format(map[string]any{
		"context":  strings.Join(contexts, "\n\n"),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("rag: format prompt: %w", err)
	}

	genStart := time.Now()
	completion, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		telemetry.RecordGeneration("error", time.Since(genStart))
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	telemetry.RecordGeneration("ok", time.Since(genStart))
	return completion, nil
}

// Insights runs the fixed analytical prompt through the chain for a scope.
func (s *Service) Insights(ctx context.Context, scopeKey string) (string, error) {
	return s.Answer(ctx, scopeKey, insightsPrompt)
}

// PurgeScope removes a scope's persisted vectors and forgets its ready
// state. Called when the owning dataset is deleted upstream, before that
// deletion completes.
func (s *Service) PurgeScope(ctx context.Context, scopeKey string) error {
	lock := s.lockFor(scopeKey)
	lock.Lock()
	defer lock.Unlock()
	if err := s.indexFor(scopeKey).Purge(ctx); err != nil {
		return fmt.Errorf("rag: purge scope %q: %w", scopeKey, err)
	}
	s.mu.Lock()
	delete(s.ready, scopeKey)
	s.mu.Unlock()
	s.logger.Info("rag: scope purged", "scope", scopeKey)
	return nil
}

// buildIfAbsent makes sure the scope's index is usable: reuse persisted rows
// when they exist, otherwise format, chunk, embed and persist the scope's
// dataset. The per-scope lock closes the check-then-act race between the
// count probe and the insert.
func (s *Service) buildIfAbsent(ctx context.Context, scopeKey string) error {
	s.mu.Lock()
	built := s.ready[scopeKey]
	s.mu.Unlock()
	if built {
		return nil
	}

	lock := s.lockFor(scopeKey)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	built = s.ready[scopeKey]
	s.mu.Unlock()
	if built {
		return nil
	}

	idx := s.indexFor(scopeKey)
	count, err := idx.Count(ctx)
	if err != nil {
		return fmt.Errorf("rag: probe scope %q: %w", scopeKey, err)
	}
	if count > 0 {
		s.logger.Debug("rag: reusing persisted index", "scope", scopeKey, "rows", count)
		s.markReady(scopeKey)
		return nil
	}

	raw, err := s.datasets.Load(scopeKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no dataset for scope %q", ErrNotReady, scopeKey)
		}
		return fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	docs, err := s.formatScope(scopeKey, raw)
	if err != nil {
		return err
	}
	chunks, err := ChunkDocuments(docs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	s.logger.Info("rag: building index", "scope", scopeKey, "documents", len(docs), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	stored := make([]vector.Document, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.PageContent
		stored[i] = vector.Document{Text: chunk.PageContent, Metadata: chunk.Metadata}
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return err
	}
	if err := idx.Add(ctx, stored, vectors); err != nil {
		return fmt.Errorf("rag: persist scope %q: %w", scopeKey, err)
	}
	telemetry.RecordIndexBuild(s.backendName(scopeKey))
	s.markReady(scopeKey)
	return nil
}

// formatScope picks the formatter entry point: a session payload shaped like
// an aspect-based sentiment result takes the narrow two-document path,
// everything else goes through the dataset formatter.
func (s *Service) formatScope(scopeKey string, raw []byte) ([]schema.Document, error) {
	if scopeKey != GlobalScope {
		if result, ok := decodeSentimentResult(raw); ok {
			return FormatSentiment(scopeKey, result), nil
		}
	}
	return FormatDataset(scopeKey, raw)
}

// embedAll fans embedding batches out over the worker pool, preserving chunk
// order. The first failure wins and fails the whole build.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		batchErr error
	)
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := start, texts[start:end]
		wg.Add(1)
		submitErr := s.embedPool.Submit(func() {
			defer wg.Done()
			result, err := s.provider.EmbedDocuments(ctx, batch)
			if err != nil {
				errOnce.Do(func() { batchErr = err })
				return
			}
			telemetry.RecordEmbedBatch(len(batch))
			copy(vectors[offset:], result)
		})
		if submitErr != nil {
			wg.Done()
			errOnce.Do(func() { batchErr = submitErr })
			break
		}
	}
	wg.Wait()
	if batchErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, batchErr)
	}
	return vectors, nil
}

func (s *Service) indexFor(scopeKey string) vector.Index {
	if scopeKey == GlobalScope {
		return s.memory.Scope(scopeKey)
	}
	return s.persistent.Scope(scopeKey)
}

func (s *Service) backendName(scopeKey string) string {
	if scopeKey == GlobalScope {
		return "memory"
	}
	return "persistent"
}

func (s *Service) lockFor(scopeKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[scopeKey]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[scopeKey] = lock
	}
	return lock
}

func (s *Service) markReady(scopeKey string) {
	s.mu.Lock()
	s.ready[scopeKey] = true
	s.mu.Unlock()
}
