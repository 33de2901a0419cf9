package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks mansahay-rag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ListByResource returns the chunks of a resource ordered by chunk_index.
	ListByResource(ctx context.Context, resourceID string) ([]*ChunkRecord, error)
	// ListIDsByResource returns the chunk IDs of a resource, ordered by chunk_index.
	ListIDsByResource(ctx context.Context, resourceID string) ([]string, error)
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface. Chunks are written by ResourceRepo.Create.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ListByResource returns the chunks of a resource ordered by chunk_index.
// Returns an empty slice if the resource has no chunks.
func (r *ChunkRepo) ListByResource(ctx context.Context, resourceID string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, resource_id, chunk_index, loc_start, loc_end, text FROM chunks WHERE resource_id = ? ORDER BY chunk_index",
		resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []*ChunkRecord{}
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.ID, &c.ResourceID, &c.ChunkIndex, &c.Start, &c.End, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return chunks, nil
}

// ListIDsByResource returns the chunk IDs of a resource, ordered by chunk_index.
// Used to collect vector point IDs before deleting a resource.
func (r *ChunkRepo) ListIDsByResource(ctx context.Context, resourceID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE resource_id = ? ORDER BY chunk_index",
		resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, resource_id, chunk_index, loc_start, loc_end, text FROM chunks WHERE id = ?",
		id,
	).Scan(&chunk.ID, &chunk.ResourceID, &chunk.ChunkIndex, &chunk.Start, &chunk.End, &chunk.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}
