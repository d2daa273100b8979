// File path: internal/vector/config.go
package vector

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTable = "rag_chunks"
	defaultDim   = 768
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type PostgresConfig struct {
	DSN   string
	Table string
	Dim   int

	MaxOpenConns         int
	MaxIdleConns         int
	ConnMaxLifetime      time.Duration
	ConnectTimeout       time.Duration
	ConnectTimeoutString string
}

func (c PostgresConfig) Merge(override PostgresConfig) PostgresConfig {
	result := c
	if strings.TrimSpace(override.DSN) != "" {
		result.DSN = strings.TrimSpace(override.DSN)
	}
	if strings.TrimSpace(override.Table) != "" {
		result.Table = strings.TrimSpace(override.Table)
	}
	if override.Dim > 0 {
		result.Dim = override.Dim
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.ConnectTimeout > 0 {
		result.ConnectTimeout = override.ConnectTimeout
	}
	if strings.TrimSpace(override.ConnectTimeoutString) != "" {
		result.ConnectTimeoutString = strings.TrimSpace(override.ConnectTimeoutString)
	}
	return result
}

func LoadPostgresConfig() (PostgresConfig, error) {
	cfg, err := loadPostgresEnv()
	if err != nil {
		return PostgresConfig{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *PostgresConfig) applyDefaults() {
	if strings.TrimSpace(c.Table) == "" {
		c.Table = defaultTable
	}
	if c.Dim <= 0 {
		c.Dim = defaultDim
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 4
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.ConnectTimeout <= 0 {
		if c.ConnectTimeoutString != "" {
			if parsed, err := time.ParseDuration(c.ConnectTimeoutString); err == nil {
				c.ConnectTimeout = parsed
			}
		}
		if c.ConnectTimeout <= 0 {
			c.ConnectTimeout = 10 * time.Second
		}
	}
}

func (c PostgresConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("vector: postgres DSN is required")
	}
	if !identPattern.MatchString(c.Table) {
		return fmt.Errorf("vector: invalid table name %q", c.Table)
	}
	if c.Dim <= 0 {
		return fmt.Errorf("vector: embedding dimension must be positive")
	}
	return nil
}

func loadPostgresEnv() (PostgresConfig, error) {
	cfg := PostgresConfig{}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		cfg.DSN = dsn
	}
	if table := strings.TrimSpace(os.Getenv("VECTOR_TABLE")); table != "" {
		cfg.Table = table
	}
	if dim := strings.TrimSpace(os.Getenv("EMBEDDING_DIM")); dim != "" {
		value, err := strconv.Atoi(dim)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("parse EMBEDDING_DIM: %w", err)
		}
		cfg.Dim = value
	}
	if maxOpen := strings.TrimSpace(os.Getenv("VECTOR_MAX_OPEN_CONNS")); maxOpen != "" {
		value, err := strconv.Atoi(maxOpen)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("parse VECTOR_MAX_OPEN_CONNS: %w", err)
		}
		if value > 0 {
			cfg.MaxOpenConns = value
		}
	}
	if maxIdle := strings.TrimSpace(os.Getenv("VECTOR_MAX_IDLE_CONNS")); maxIdle != "" {
		value, err := strconv.Atoi(maxIdle)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("parse VECTOR_MAX_IDLE_CONNS: %w", err)
		}
		if value > 0 {
			cfg.MaxIdleConns = value
		}
	}
	if timeout := strings.TrimSpace(os.Getenv("VECTOR_CONNECT_TIMEOUT")); timeout != "" {
		cfg.ConnectTimeoutString = timeout
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.ConnectTimeout = parsed
		}
	}
	return cfg, nil
}
