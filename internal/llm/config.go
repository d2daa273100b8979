// File path: internal/llm/config.go
package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultChatModel     = "openai/gpt-oss-20b"
	defaultChatEndpoint  = "https://api.groq.com/openai/v1"
	defaultEmbedModel    = "text-embedding-004"
	defaultEmbedEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai"
)

type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float64
	MaxTokens   int

	EmbeddingAPIKey   string
	EmbeddingModel    string
	EmbeddingEndpoint string
	EmbeddingBatch    int

	Timeout       time.Duration
	TimeoutString string
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.APIKey) != "" {
		result.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.Model) != "" {
		result.Model = strings.TrimSpace(override.Model)
	}
	if strings.TrimSpace(override.Endpoint) != "" {
		result.Endpoint = strings.TrimSpace(override.Endpoint)
	}
	if override.Temperature > 0 {
		result.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		result.MaxTokens = override.MaxTokens
	}
	if strings.TrimSpace(override.EmbeddingAPIKey) != "" {
		result.EmbeddingAPIKey = override.EmbeddingAPIKey
	}
	if strings.TrimSpace(override.EmbeddingModel) != "" {
		result.EmbeddingModel = strings.TrimSpace(override.EmbeddingModel)
	}
	if strings.TrimSpace(override.EmbeddingEndpoint) != "" {
		result.EmbeddingEndpoint = strings.TrimSpace(override.EmbeddingEndpoint)
	}
	if override.EmbeddingBatch > 0 {
		result.EmbeddingBatch = override.EmbeddingBatch
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if strings.TrimSpace(override.TimeoutString) != "" {
		result.TimeoutString = strings.TrimSpace(override.TimeoutString)
	}
	return result
}

func LoadConfig() (Config, error) {
	cfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = defaultChatModel
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = defaultChatEndpoint
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 8192
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		c.EmbeddingModel = defaultEmbedModel
	}
	if strings.TrimSpace(c.EmbeddingEndpoint) == "" {
		c.EmbeddingEndpoint = defaultEmbedEndpoint
	}
	if c.EmbeddingBatch <= 0 {
		c.EmbeddingBatch = 64
	}
	if c.Timeout <= 0 {
		if c.TimeoutString != "" {
			if parsed, err := time.ParseDuration(c.TimeoutString); err == nil {
				c.Timeout = parsed
			}
		}
		if c.Timeout <= 0 {
			c.Timeout = 60 * time.Second
		}
	}
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	if apiKey := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); apiKey != "" {
		cfg.APIKey = apiKey
	}
	if model := strings.TrimSpace(os.Getenv("GROQ_MODEL")); model != "" {
		cfg.Model = model
	}
	if endpoint := strings.TrimSpace(os.Getenv("GROQ_ENDPOINT")); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if temp := strings.TrimSpace(os.Getenv("GROQ_TEMPERATURE")); temp != "" {
		value, err := strconv.ParseFloat(temp, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse GROQ_TEMPERATURE: %w", err)
		}
		cfg.Temperature = value
	}
	if maxTokens := strings.TrimSpace(os.Getenv("GROQ_MAX_TOKENS")); maxTokens != "" {
		value, err := strconv.Atoi(maxTokens)
		if err != nil {
			return Config{}, fmt.Errorf("parse GROQ_MAX_TOKENS: %w", err)
		}
		cfg.MaxTokens = value
	}
	if apiKey := strings.TrimSpace(os.Getenv("EMBEDDING_API_KEY")); apiKey != "" {
		cfg.EmbeddingAPIKey = apiKey
	} else if apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); apiKey != "" {
		cfg.EmbeddingAPIKey = apiKey
	}
	if model := strings.TrimSpace(os.Getenv("EMBEDDING_MODEL")); model != "" {
		cfg.EmbeddingModel = model
	}
	if endpoint := strings.TrimSpace(os.Getenv("EMBEDDING_ENDPOINT")); endpoint != "" {
		cfg.EmbeddingEndpoint = endpoint
	}
	if batch := strings.TrimSpace(os.Getenv("EMBEDDING_BATCH_SIZE")); batch != "" {
		value, err := strconv.Atoi(batch)
		if err != nil {
			return Config{}, fmt.Errorf("parse EMBEDDING_BATCH_SIZE: %w", err)
		}
		if value > 0 {
			cfg.EmbeddingBatch = value
		}
	}
	if timeout := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); timeout != "" {
		cfg.TimeoutString = timeout
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.Timeout = parsed
		}
	}
	return cfg, nil
}
