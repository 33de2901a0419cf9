package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resource_store.go -package=mocks mansahay-rag/internal/storage ResourceStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ResourceStore defines the interface for resource storage operations.
type ResourceStore interface {
	// Create inserts a resource and all of its chunks in one transaction.
	Create(ctx context.Context, resource *ResourceRecord, chunks []*ChunkRecord) error
	// GetByID gets a resource by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ResourceRecord, error)
	// ListBySource returns every resource ingested from source in collection, oldest first.
	ListBySource(ctx context.Context, collection, source string) ([]*ResourceRecord, error)
	// List returns every resource in collection, newest first.
	List(ctx context.Context, collection string) ([]*ResourceRecord, error)
	// Delete removes a resource and its chunks. Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
	// Stats counts resources, chunks and distinct sources in collection.
	Stats(ctx context.Context, collection string) (*CollectionStats, error)
}

// ResourceRepo provides methods for resource operations.
// It implements the ResourceStore interface.
type ResourceRepo struct {
	db *sql.DB
}

// NewResourceRepo creates a new ResourceRepo.
func NewResourceRepo(db *sql.DB) *ResourceRepo {
	return &ResourceRepo{db: db}
}

// timeLayout is fixed-width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const resourceColumns = "id, collection, source, kind, mime_type, chunk_count, char_count, uploaded_at"

// Create inserts a resource and all of its chunks in one transaction.
// resource.ID and every chunk ID must be set before calling.
func (r *ResourceRepo) Create(ctx context.Context, resource *ResourceRecord, chunks []*ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO resources ("+resourceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		resource.ID, resource.Collection, resource.Source, resource.Kind, resource.MIMEType,
		resource.ChunkCount, resource.CharCount, resource.UploadedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, resource_id, chunk_index, loc_start, loc_end, text) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, resource.ID, chunk.ChunkIndex, chunk.Start, chunk.End, chunk.Text); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
		chunk.ResourceID = resource.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resource: %w", err)
	}
	return nil
}

// GetByID gets a resource by ID. Returns ErrNotFound if not found.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (*ResourceRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}
	return res, nil
}

// ListBySource returns every resource ingested from source in collection, oldest first.
// Returns an empty slice if there are none.
func (r *ResourceRepo) ListBySource(ctx context.Context, collection, source string) ([]*ResourceRecord, error) {
	return r.query(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE collection = ? AND source = ? ORDER BY uploaded_at, id",
		collection, source,
	)
}

// List returns every resource in collection, newest first.
func (r *ResourceRepo) List(ctx context.Context, collection string) ([]*ResourceRecord, error) {
	return r.query(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE collection = ? ORDER BY uploaded_at DESC, id",
		collection,
	)
}

// Delete removes a resource and its chunks. Returns ErrNotFound if not found.
func (r *ResourceRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE resource_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Stats counts resources, chunks and distinct sources in collection.
func (r *ResourceRepo) Stats(ctx context.Context, collection string) (*CollectionStats, error) {
	var stats CollectionStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source), COALESCE(SUM(chunk_count), 0)
		 FROM resources WHERE collection = ?`,
		collection,
	).Scan(&stats.Resources, &stats.Sources, &stats.Chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &stats, nil
}

func (r *ResourceRepo) query(ctx context.Context, q string, args ...any) ([]*ResourceRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	resources := []*ResourceRecord{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return resources, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*ResourceRecord, error) {
	var res ResourceRecord
	var uploadedAt string
	err := row.Scan(&res.ID, &res.Collection, &res.Source, &res.Kind, &res.MIMEType,
		&res.ChunkCount, &res.CharCount, &uploadedAt)
	if err != nil {
		return nil, err
	}
	res.UploadedAt, err = time.Parse(timeLayout, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at timestamp: %w", err)
	}
	return &res, nil
}
