// File path: internal/llm/llm.go
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/sentinela-id/sentinela/internal/common"
)

// Provider is the chat and embedding surface the retrieval chain depends on.
// Embedding calls preserve input order.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Name() string
}

type groqProvider struct {
	cfg      Config
	model    llms.Model
	embedder embeddings.Embedder
}

// NewProvider builds the Groq-compatible chat client and the OpenAI-compatible
// embeddings client from cfg.
func NewProvider(cfg Config) (Provider, error) {
	logger := common.Logger()
	httpClient := &http.Client{Timeout: cfg.Timeout}

	chatClient, err := openai.New(
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: create chat client: %w", err)
	}

	embedKey := cfg.EmbeddingAPIKey
	if strings.TrimSpace(embedKey) == "" {
		embedKey = cfg.APIKey
	}
	embedClient, err := openai.New(
		openai.WithBaseURL(cfg.EmbeddingEndpoint),
		openai.WithToken(embedKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: create embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(embedClient,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(cfg.EmbeddingBatch),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: create embedder: %w", err)
	}

	logger.Info("llm: provider ready", "model", cfg.Model, "embedding_model", cfg.EmbeddingModel)
	return &groqProvider{cfg: cfg, model: chatClient, embedder: embedder}, nil
}

func (p *groqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt,
		llms.WithTemperature(p.cfg.Temperature),
		llms.WithMaxTokens(p.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	return completion, nil
}

func (p *groqProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("llm: embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("llm: embed documents: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (p *groqProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("llm: embed query: %w", err)
	}
	return vector, nil
}

func (p *groqProvider) Name() string { return "groq" }
