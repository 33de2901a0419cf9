package storage

import "time"

// Resource kinds.
const (
	KindUpload  = "upload"
	KindReport  = "report"
	KindJournal = "journal"
	KindFile    = "file"
)

// ResourceRecord is one ingested document: an uploaded file or text saved from chat.
type ResourceRecord struct {
	ID         string // UUID, returned to clients as fileId/resourceId
	Collection string // Vector collection holding the chunks
	Source     string // Original filename or title
	Kind       string // upload, report, journal or file
	MIMEType   string
	ChunkCount int
	CharCount  int
	UploadedAt time.Time
}

// ChunkRecord is one chunk of a resource. ID is also the vector point ID.
type ChunkRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	ResourceID string // Foreign key to resources.id
	ChunkIndex int    // Index within resource (starts at 0)
	Start      int    // Character offset of the first rune
	End        int    // Character offset past the last rune
	Text       string
}

// CollectionStats summarises the registry for one collection.
type CollectionStats struct {
	Resources int
	Chunks    int
	Sources   int
}
