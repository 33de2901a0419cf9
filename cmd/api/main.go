package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mansahay-rag/internal/app"
	"mansahay-rag/internal/config"
	"mansahay-rag/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API ingests wellbeing documents into a vector knowledge base and answers searches over it for the Mansahay app.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Mansahay RAG API
//   description: |
//     Document ingestion and multi-query fusion search for the Mansahay companion app.
//     Uploaded PDF, Markdown and text files are chunked, embedded and stored in Qdrant.
//     Searches expand the query into alternative phrasings and fuse the ranked results.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(app.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	router := http.NewRouter(&http.Deps{
		IngestService:   a.Ingest,
		SearchService:   a.Search,
		ResourceService: a.Resources,
		ChatService:     a.Chat,
		VectorStore:     a.VectorStore,
		CollectionName:  cfg.QdrantCollection,
		UploadDir:       cfg.UploadDir,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
