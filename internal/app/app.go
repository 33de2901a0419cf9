// Package app wires configuration, clients and services together for the
// API server and the operator CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"mansahay-rag/internal/chunker"
	"mansahay-rag/internal/config"
	"mansahay-rag/internal/fusion"
	"mansahay-rag/internal/llm"
	"mansahay-rag/internal/service"
	"mansahay-rag/internal/storage"
	"mansahay-rag/internal/vectorstore"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config      *config.Config
	DB          *sql.DB
	VectorStore *vectorstore.QdrantStore

	Ingest    service.IngestService
	Search    service.SearchService
	Resources service.ResourceService
	Chat      service.ChatService
}

// NewLogger builds the process logger: JSON or text on w at the given level.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New opens the registry, connects to Qdrant, ensures the default collection
// and builds every service. The embedding endpoint is probed once so a vector
// size mismatch fails at startup rather than on the first upload.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.DB, err = storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(a.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.InfoContext(ctx, "Database initialized", "path", cfg.DBPath)

	resourceRepo := storage.NewResourceRepo(a.DB)
	chunkRepo := storage.NewChunkRepo(a.DB)

	a.VectorStore, err = vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	if err := a.VectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	slog.InfoContext(ctx, "Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	tuning := cfg.Retrieval

	// One request budget for chat, expansion and embedding calls: they
	// usually hit the same provider account.
	var limiter *rate.Limiter
	if tuning.LLMRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(tuning.LLMRequestsPerSecond), max(tuning.LLMBurst, 1))
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize,
		llm.WithRateLimiter(limiter),
		llm.WithBatchSize(cfg.EmbeddingBatchSize),
	)
	if err := validateEmbedder(ctx, embedder, cfg.QdrantVectorSize); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName,
		llm.WithRateLimiter(limiter),
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
	)

	chk, err := chunker.New(
		chunker.WithChunkSize(tuning.ChunkSize),
		chunker.WithOverlap(tuning.ChunkOverlap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	a.Ingest = service.NewIngestService(chk, embedder, a.VectorStore, resourceRepo, service.IngestConfig{
		Collection:   cfg.QdrantCollection,
		VectorSize:   cfg.QdrantVectorSize,
		EmbedTimeout: tuning.EmbedTimeout,
		StoreTimeout: tuning.SearchTimeout,
	})

	a.Search = service.NewSearchService(
		service.NewQueryExpander(llmClient, tuning.ExpansionTimeout),
		service.NewRetriever(embedder, a.VectorStore, tuning.EmbedTimeout, tuning.SearchTimeout),
		a.VectorStore,
		fusion.New(tuning.RRFK),
		service.SearchConfig{
			Collection:       cfg.QdrantCollection,
			Expansions:       tuning.Expansions,
			PerVariantK:      tuning.PerVariantK,
			TopK:             tuning.TopK,
			MaxParallel:      tuning.MaxParallelSearches,
			ExposeFusedScore: tuning.ExposeFusedScore,
		},
	)

	a.Resources = service.NewResourceService(resourceRepo, chunkRepo, a.VectorStore, cfg.QdrantCollection, tuning.SearchTimeout)

	a.Chat = service.NewChatService(llmClient, a.Ingest, a.Search, a.Resources, service.ChatConfig{
		Collection:    cfg.QdrantCollection,
		MaxToolRounds: tuning.ChatMaxToolRounds,
		Temperature:   cfg.LLMTemperature,
		MaxTokens:     cfg.LLMMaxTokens,
		Timeout:       tuning.ChatTimeout,
	})

	slog.DebugContext(ctx, "LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	return a, nil
}

// Close releases the database and the Qdrant connection.
func (a *App) Close() error {
	var errs []error
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close qdrant: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// validateEmbedder embeds a probe text and checks the vector size.
func validateEmbedder(ctx context.Context, embedder service.Embedder, vectorSize int) error {
	embeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) != vectorSize {
		got := 0
		if len(embeddings) > 0 {
			got = len(embeddings[0])
		}
		return fmt.Errorf("embedding vector size mismatch: expected %d, got %d", vectorSize, got)
	}
	return nil
}
