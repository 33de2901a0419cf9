package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resource_service.go -package=mocks -mock_names=ResourceService=MockResourceService mansahay-rag/internal/service ResourceService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mansahay-rag/internal/chunker"
	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/storage"
	"mansahay-rag/internal/vectorstore"
)

// Resource is an ingested document as exposed to clients.
type Resource struct {
	ID         string
	Collection string
	Source     string
	Kind       string
	MIMEType   string
	ChunkCount int
	CharCount  int
	UploadedAt time.Time
}

// ResourceDetail is a resource with its text rebuilt from its chunks.
type ResourceDetail struct {
	Resource
	Content string
}

// DeleteResult reports what a delete removed.
type DeleteResult struct {
	Resources int
	Chunks    int
}

// ResourceService reads and deletes ingested resources.
type ResourceService interface {
	List(ctx context.Context, collection string) ([]Resource, error)
	Get(ctx context.Context, id string) (ResourceDetail, error)
	DeleteBySource(ctx context.Context, collection, source string) (DeleteResult, error)
	Stats(ctx context.Context, collection string) (storage.CollectionStats, error)
}

// resourceService implements ResourceService.
type resourceService struct {
	resources    storage.ResourceStore
	chunks       storage.ChunkStore
	vectorStore  vectorstore.VectorStore
	collection   string
	storeTimeout time.Duration
}

// NewResourceService creates a new ResourceService.
func NewResourceService(
	resources storage.ResourceStore,
	chunks storage.ChunkStore,
	vectorStore vectorstore.VectorStore,
	collection string,
	storeTimeout time.Duration,
) ResourceService {
	return &resourceService{
		resources:    resources,
		chunks:       chunks,
		vectorStore:  vectorStore,
		collection:   collection,
		storeTimeout: storeTimeout,
	}
}

func (s *resourceService) collectionOrDefault(c string) string {
	if c == "" {
		return s.collection
	}
	return c
}

// List returns the resources of a collection, newest first.
func (s *resourceService) List(ctx context.Context, collection string) ([]Resource, error) {
	records, err := s.resources.List(ctx, s.collectionOrDefault(collection))
	if err != nil {
		return nil, WrapError(err, "failed to list resources")
	}

	resources := make([]Resource, len(records))
	for i, r := range records {
		resources[i] = toResource(r)
	}
	return resources, nil
}

// Get returns one resource with its reassembled text.
func (s *resourceService) Get(ctx context.Context, id string) (ResourceDetail, error) {
	if strings.TrimSpace(id) == "" {
		return ResourceDetail{}, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	record, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ResourceDetail{}, fmt.Errorf("resource %s: %w", id, ErrNotFound)
		}
		return ResourceDetail{}, WrapError(err, "failed to get resource")
	}

	chunkRecords, err := s.chunks.ListByResource(ctx, id)
	if err != nil {
		return ResourceDetail{}, WrapError(err, "failed to list chunks")
	}

	chunks := make([]chunker.Chunk, len(chunkRecords))
	for i, c := range chunkRecords {
		chunks[i] = chunker.Chunk{
			Index:   c.ChunkIndex,
			Content: c.Text,
			Source:  record.Source,
			Start:   c.Start,
			End:     c.End,
		}
	}

	return ResourceDetail{
		Resource: toResource(record),
		Content:  chunker.Reassemble(chunks),
	}, nil
}

// DeleteBySource removes every resource named source: its vector points by ID,
// then its registry rows. A final filter delete on the source sweeps points
// left behind by ingestions that failed after upserting.
func (s *resourceService) DeleteBySource(ctx context.Context, collection, source string) (DeleteResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(source) == "" {
		return DeleteResult{}, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	collection = s.collectionOrDefault(collection)

	records, err := s.resources.ListBySource(ctx, collection, source)
	if err != nil {
		return DeleteResult{}, WrapError(err, "failed to list resources")
	}

	var result DeleteResult
	for _, r := range records {
		ids, err := s.chunks.ListIDsByResource(ctx, r.ID)
		if err != nil {
			return result, WrapError(err, "failed to list chunk ids")
		}

		storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
		err = s.vectorStore.Delete(storeCtx, collection, ids)
		cancel()
		if err != nil {
			return result, &VectorStoreError{Op: "delete", Collection: collection, Err: err}
		}

		if err := s.resources.Delete(ctx, r.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return result, WrapError(err, "failed to delete resource")
		}
		result.Resources++
		result.Chunks += len(ids)
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	err = s.vectorStore.DeleteByFilter(storeCtx, collection, map[string]any{vectorstore.FieldSource: source})
	cancel()
	if err != nil {
		return result, &VectorStoreError{Op: "delete by source", Collection: collection, Err: err}
	}

	logger.InfoContext(ctx, "deleted resources by source",
		"collection", collection,
		"source", source,
		"resources", result.Resources,
		"chunks", result.Chunks,
	)
	return result, nil
}

// Stats returns registry counts for a collection.
func (s *resourceService) Stats(ctx context.Context, collection string) (storage.CollectionStats, error) {
	stats, err := s.resources.Stats(ctx, s.collectionOrDefault(collection))
	if err != nil {
		return storage.CollectionStats{}, WrapError(err, "failed to get stats")
	}
	return *stats, nil
}

func toResource(r *storage.ResourceRecord) Resource {
	return Resource{
		ID:         r.ID,
		Collection: r.Collection,
		Source:     r.Source,
		Kind:       r.Kind,
		MIMEType:   r.MIMEType,
		ChunkCount: r.ChunkCount,
		CharCount:  r.CharCount,
		UploadedAt: r.UploadedAt,
	}
}
