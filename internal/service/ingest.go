package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingest_service.go -package=mocks -mock_names=IngestService=MockIngestService mansahay-rag/internal/service IngestService

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mansahay-rag/internal/chunker"
	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/loader"
	"mansahay-rag/internal/storage"
	"mansahay-rag/internal/vectorstore"
)

// IngestFileRequest describes an uploaded or local file to ingest.
type IngestFileRequest struct {
	Path       string // File on disk
	Filename   string // Original name; becomes the chunk source
	MIMEType   string
	Collection string // Empty means the configured default
	// RemoveOnSuccess deletes Path after a successful ingestion. Uploads set
	// it; local files ingested from the CLI do not.
	RemoveOnSuccess bool
}

// IngestTextRequest describes text that never existed as a file.
type IngestTextRequest struct {
	Collection string
	Title      string // Becomes the chunk source
	Kind       string // report, journal or file
	Text       string
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	ResourceID string
	Source     string
	Collection string
	Chunks     int
}

// IngestService loads, chunks, embeds and stores documents.
type IngestService interface {
	IngestFile(ctx context.Context, req IngestFileRequest) (IngestResult, error)
	IngestText(ctx context.Context, req IngestTextRequest) (IngestResult, error)
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	Collection   string
	VectorSize   int // Used to create collections other than the default on first use
	EmbedTimeout time.Duration
	StoreTimeout time.Duration
}

// ingestService implements IngestService.
type ingestService struct {
	chunker     *chunker.Chunker
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	resources   storage.ResourceStore
	cfg         IngestConfig
	now         func() time.Time
}

// NewIngestService creates a new IngestService.
func NewIngestService(
	chk *chunker.Chunker,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	resources storage.ResourceStore,
	cfg IngestConfig,
) IngestService {
	return &ingestService{
		chunker:     chk,
		embedder:    embedder,
		vectorStore: vectorStore,
		resources:   resources,
		cfg:         cfg,
		now:         time.Now,
	}
}

// IngestFile ingests one file. On failure the file is left in place.
func (s *ingestService) IngestFile(ctx context.Context, req IngestFileRequest) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Path == "" {
		return IngestResult{}, &ValidationError{Field: "file", Message: "is required"}
	}
	if strings.TrimSpace(req.Filename) == "" {
		return IngestResult{}, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	if err := validateCollection(req.Collection); err != nil {
		return IngestResult{}, err
	}

	doc, err := loader.Load(req.Path, req.Filename, req.MIMEType)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			logger.WarnContext(ctx, "unsupported document, file kept", "filename", req.Filename, "temp_path", req.Path, "error", err)
			return IngestResult{}, &UnsupportedFormatError{Filename: req.Filename, TempPath: req.Path, Err: err}
		}
		logger.ErrorContext(ctx, "failed to load document", "filename", req.Filename, "error", err)
		return IngestResult{}, WrapError(err, "failed to load document")
	}

	mimeType := req.MIMEType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeTypes[doc.Format]
	}

	result, err := s.ingest(ctx, record{
		collection: s.collection(req.Collection),
		source:     req.Filename,
		kind:       storage.KindUpload,
		mimeType:   mimeType,
		text:       doc.Text,
	})
	if err != nil {
		logger.ErrorContext(ctx, "ingestion failed, file kept", "filename", req.Filename, "temp_path", req.Path, "error", err)
		return IngestResult{}, err
	}

	if req.RemoveOnSuccess {
		if err := os.Remove(req.Path); err != nil {
			logger.WarnContext(ctx, "failed to remove ingested file", "path", req.Path, "error", err)
		}
	}
	return result, nil
}

// IngestText ingests text saved from chat (reports, journal entries).
func (s *ingestService) IngestText(ctx context.Context, req IngestTextRequest) (IngestResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return IngestResult{}, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Text) == "" {
		return IngestResult{}, &ValidationError{Field: "content", Message: "cannot be empty"}
	}
	if err := validateCollection(req.Collection); err != nil {
		return IngestResult{}, err
	}

	kind := req.Kind
	switch kind {
	case storage.KindReport, storage.KindJournal, storage.KindFile:
	case "":
		kind = storage.KindFile
	default:
		return IngestResult{}, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown resource type %q", req.Kind)}
	}

	return s.ingest(ctx, record{
		collection: s.collection(req.Collection),
		source:     req.Title,
		kind:       kind,
		mimeType:   "text/plain",
		text:       req.Text,
	})
}

var mimeTypes = map[loader.Format]string{
	loader.FormatPDF:      "application/pdf",
	loader.FormatMarkdown: "text/markdown",
	loader.FormatText:     "text/plain",
}

type record struct {
	collection string
	source     string
	kind       string
	mimeType   string
	text       string
}

func (s *ingestService) collection(c string) string {
	if c == "" {
		return s.cfg.Collection
	}
	return c
}

// ingest chunks, embeds and upserts text, then records it in the registry.
// If recording fails the upserted points are removed again.
func (s *ingestService) ingest(ctx context.Context, rec record) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()
	uploadedAt := s.now().UTC()

	chunks, err := s.chunker.Split(chunker.Document{
		Content:    rec.text,
		Source:     rec.source,
		UploadedAt: uploadedAt,
	})
	if err != nil {
		var invalid *chunker.InvalidInputError
		if errors.As(err, &invalid) {
			return IngestResult{}, &ValidationError{Field: invalid.Field, Message: invalid.Message}
		}
		return IngestResult{}, WrapError(err, "failed to chunk document")
	}

	// The default collection is ensured at startup.
	if rec.collection != s.cfg.Collection {
		storeCtx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
		err := s.vectorStore.EnsureCollection(storeCtx, rec.collection, s.cfg.VectorSize)
		cancel()
		if err != nil {
			return IngestResult{}, &VectorStoreError{Op: "ensure collection", Collection: rec.collection, Err: err}
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embedCtx, cancel := withTimeout(ctx, s.cfg.EmbedTimeout)
	embeddings, err := s.embedder.EmbedTexts(embedCtx, texts)
	cancel()
	if err != nil {
		return IngestResult{}, &EmbeddingError{Op: "chunks", Err: err}
	}
	if len(embeddings) != len(chunks) {
		return IngestResult{}, &EmbeddingError{Op: "chunks", Err: fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))}
	}

	resourceID := uuid.New().String()
	resource := &storage.ResourceRecord{
		ID:         resourceID,
		Collection: rec.collection,
		Source:     rec.source,
		Kind:       rec.kind,
		MIMEType:   rec.mimeType,
		ChunkCount: len(chunks),
		CharCount:  utf8.RuneCountInString(rec.text),
		UploadedAt: uploadedAt,
	}

	chunkRecords := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	pointIDs := make([]string, len(chunks))
	for i, c := range chunks {
		pointID := uuid.New().String()
		pointIDs[i] = pointID

		chunkRecords[i] = &storage.ChunkRecord{
			ID:         pointID,
			ResourceID: resourceID,
			ChunkIndex: c.Index,
			Start:      c.Start,
			End:        c.End,
			Text:       c.Content,
		}

		points[i] = vectorstore.Point{
			ID:  pointID,
			Vec: embeddings[i],
			Meta: map[string]any{
				vectorstore.FieldContent:    c.Content,
				vectorstore.FieldSource:     c.Source,
				vectorstore.FieldLocStart:   c.Start,
				vectorstore.FieldLocEnd:     c.End,
				vectorstore.FieldUploadedAt: c.UploadedAt.Format(time.RFC3339),
				vectorstore.FieldResourceID: resourceID,
				vectorstore.FieldChunkIndex: c.Index,
			},
		}
	}

	storeCtx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	err = s.vectorStore.Upsert(storeCtx, rec.collection, points)
	cancel()
	if err != nil {
		return IngestResult{}, &VectorStoreError{Op: "upsert", Collection: rec.collection, Err: err}
	}

	if err := s.resources.Create(ctx, resource, chunkRecords); err != nil {
		logger.ErrorContext(ctx, "failed to record resource, removing upserted points", "resource_id", resourceID, "error", err)
		cleanupCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
		if delErr := s.vectorStore.Delete(cleanupCtx, rec.collection, pointIDs); delErr != nil {
			logger.ErrorContext(ctx, "failed to remove orphaned points", "resource_id", resourceID, "count", len(pointIDs), "error", delErr)
		}
		cancel()
		return IngestResult{}, WrapError(err, "failed to record resource")
	}

	logger.InfoContext(ctx, "ingested resource",
		"resource_id", resourceID,
		"collection", rec.collection,
		"source", rec.source,
		"kind", rec.kind,
		"chunks", len(chunks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return IngestResult{
		ResourceID: resourceID,
		Source:     rec.source,
		Collection: rec.collection,
		Chunks:     len(chunks),
	}, nil
}
