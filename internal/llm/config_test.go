// File path: internal/llm/config_test.go
package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"GROQ_API_KEY", "GROQ_MODEL", "GROQ_ENDPOINT", "GROQ_TEMPERATURE",
		"GROQ_MAX_TOKENS", "EMBEDDING_API_KEY", "GOOGLE_API_KEY",
		"EMBEDDING_MODEL", "EMBEDDING_ENDPOINT", "EMBEDDING_BATCH_SIZE", "LLM_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, defaultChatModel, cfg.Model)
	require.Equal(t, defaultChatEndpoint, cfg.Endpoint)
	require.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	require.Equal(t, 8192, cfg.MaxTokens)
	require.Equal(t, defaultEmbedModel, cfg.EmbeddingModel)
	require.Equal(t, defaultEmbedEndpoint, cfg.EmbeddingEndpoint)
	require.Equal(t, 64, cfg.EmbeddingBatch)
	require.Equal(t, 60*time.Second, cfg.Timeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("GROQ_TEMPERATURE", "0.2")
	t.Setenv("GROQ_MAX_TOKENS", "2048")
	t.Setenv("EMBEDDING_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("LLM_TIMEOUT", "15s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "gsk_test", cfg.APIKey)
	require.Equal(t, "llama-3.3-70b-versatile", cfg.Model)
	require.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	require.Equal(t, 2048, cfg.MaxTokens)
	require.Equal(t, "google-key", cfg.EmbeddingAPIKey)
	require.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	t.Setenv("GROQ_MAX_TOKENS", "banyak")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigMerge(t *testing.T) {
	base := Config{}
	base.applyDefaults()
	merged := base.Merge(Config{Model: "custom-model", MaxTokens: 4096})
	require.Equal(t, "custom-model", merged.Model)
	require.Equal(t, 4096, merged.MaxTokens)
	require.Equal(t, defaultChatEndpoint, merged.Endpoint)
}
