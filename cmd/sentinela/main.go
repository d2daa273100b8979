// File path: cmd/sentinela/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sentinela-id/sentinela/internal/api"
	"github.com/sentinela-id/sentinela/internal/common"
	"github.com/sentinela-id/sentinela/internal/dataset"
	"github.com/sentinela-id/sentinela/internal/llm"
	"github.com/sentinela-id/sentinela/internal/rag"
	"github.com/sentinela-id/sentinela/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("sentinela: .env file not loaded", "error", err)
	} else {
		logger.Info("sentinela: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dataRoot := flag.String("data", defaultDataRoot(), "directory holding per-scope dataset files")
	flag.Parse()

	logger.Info("sentinela: startup initiated", "addr", *addr, "data", *dataRoot)

	datasets, err := dataset.NewStore(*dataRoot)
	if err != nil {
		logger.Error("sentinela: dataset store init failed", "error", err)
		fmt.Println("dataset store error:", err)
		os.Exit(1)
	}

	llmCfg, err := llm.LoadConfig()
	if err != nil {
		logger.Error("sentinela: llm config load failed", "error", err)
		fmt.Println("llm config error:", err)
		os.Exit(1)
	}
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		logger.Error("sentinela: llm provider init failed", "error", err)
		fmt.Println("llm provider error:", err)
		os.Exit(1)
	}

	memoryStore := vector.NewMemoryStore()

	var persistent vector.Store
	pgCfg, err := vector.LoadPostgresConfig()
	if err != nil {
		logger.Error("sentinela: postgres config load failed", "error", err)
		fmt.Println("postgres config error:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(pgCfg.DSN) != "" {
		pgStore, err := vector.NewPostgresStore(ctx, pgCfg)
		if err != nil {
			logger.Error("sentinela: postgres store init failed", "error", err)
			fmt.Println("postgres store error:", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		persistent = pgStore
	} else {
		logger.Warn("sentinela: DATABASE_URL not set; session indexes will live in memory only")
	}

	service, err := rag.New(provider, datasets, memoryStore, persistent,
		rag.WithBatchSize(llmCfg.EmbeddingBatch),
	)
	if err != nil {
		logger.Error("sentinela: rag service init failed", "error", err)
		fmt.Println("rag service error:", err)
		os.Exit(1)
	}
	defer service.Close()

	// Build the global index in the background; entry points answer with a
	// conflict until it finishes.
	go func() {
		if err := service.Initialize(ctx); err != nil {
			logger.Error("sentinela: global index build failed", "error", err)
		}
	}()

	server, err := api.NewServer(service, datasets)
	if err != nil {
		logger.Error("sentinela: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("sentinela: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("sentinela: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDataRoot() string {
	if env := strings.TrimSpace(os.Getenv("DATASET_ROOT")); env != "" {
		return env
	}
	return "data"
}
