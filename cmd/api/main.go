package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/config"
	"github.com/dylondark/cob-zippy-ai/internal/http"
	"github.com/dylondark/cob-zippy-ai/internal/indexer"
	"github.com/dylondark/cob-zippy-ai/internal/llm"
	"github.com/dylondark/cob-zippy-ai/internal/rag"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding model vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.OllamaHost, cfg.EmbedModel, cfg.QdrantVectorSize,
		time.Duration(cfg.EmbedTimeoutSec)*time.Second)
	if _, err := embedder.Embed(ctx, "test"); err != nil {
		log.Fatalf("Failed to validate embedding model: %v", err)
	}
	slog.Info("Embedding model validated", "model", cfg.EmbedModel, "vector_size", cfg.QdrantVectorSize)

	pipeline := indexer.NewPipeline(
		docRepo,
		chunkRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.PagesDir,
		cfg.ChunkSize,
		cfg.ChunkOverlap,
	)

	llmClient := llm.NewClient(cfg.OllamaHost, cfg.LLMModel, cfg.Temperature, cfg.MaxNewTokens,
		time.Duration(cfg.GenTimeoutSec)*time.Second)

	engine := rag.NewEngine(
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		chunkRepo,
		llmClient,
	)
	slog.Info("Answer engine initialized", "llm_model", cfg.LLMModel)

	deps := &http.Deps{
		Engine:      engine,
		Pipeline:    pipeline,
		DocRepo:     docRepo,
		VectorStore: vectorStore,
		EmbedModel:  cfg.EmbedModel,
		Collection:  cfg.QdrantCollection,
		StorePath:   cfg.DBPath,
		PagesDir:    cfg.PagesDir,
	}
	router := http.NewRouter(deps)

	// Index the pages folder in the background once the router is up.
	go func() {
		slog.Info("Starting background reindex", "dir", cfg.PagesDir)
		if n, err := pipeline.ReindexFolder(context.Background()); err != nil {
			slog.Error("Reindex completed with errors", "chunks", n, "error", err)
		} else {
			slog.Info("Reindex completed", "chunks", n)
		}
	}()

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("Model configuration", "ollama_host", cfg.OllamaHost, "llm_model", cfg.LLMModel, "embed_model", cfg.EmbedModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
