package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// newTestDB opens a migrated database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func testResource(id, collection, source string, uploadedAt time.Time, chunkTexts ...string) (*ResourceRecord, []*ChunkRecord) {
	res := &ResourceRecord{
		ID:         id,
		Collection: collection,
		Source:     source,
		Kind:       KindUpload,
		MIMEType:   "text/plain",
		ChunkCount: len(chunkTexts),
		UploadedAt: uploadedAt,
	}
	chunks := make([]*ChunkRecord, len(chunkTexts))
	offset := 0
	for i, text := range chunkTexts {
		chunks[i] = &ChunkRecord{
			ID:         id + "-chunk-" + string(rune('a'+i)),
			ChunkIndex: i,
			Start:      offset,
			End:        offset + len(text),
			Text:       text,
		}
		offset += len(text)
		res.CharCount += len(text)
	}
	return res, chunks
}
