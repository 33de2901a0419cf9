// Package chunker splits documents into fixed-size, overlapping chunks that
// carry their position in the source text.
package chunker

import (
	"fmt"
	"time"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the number of characters shared by consecutive chunks.
	DefaultOverlap = 200
)

// Document is the loaded text of one source.
type Document struct {
	Content    string
	Source     string
	UploadedAt time.Time
}

// Chunk is a contiguous region of a Document. Start and End are character
// (rune) offsets into the document content, End exclusive.
type Chunk struct {
	Index      int
	Content    string
	Source     string
	Start      int
	End        int
	UploadedAt time.Time
}

// Key identifies a chunk across searches: the same source and start offset
// always describe the same region.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s_%d", c.Source, c.Start)
}

// InvalidInputError reports an unusable chunking request.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid chunker input %s: %s", e.Field, e.Message)
}

// Chunker splits documents with a fixed window.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the window length in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets how many characters consecutive chunks share.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New returns a Chunker with the default 1000/200 window unless overridden.
// It fails when the resulting size is not positive or not larger than the overlap.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := validate(c.size, c.overlap); err != nil {
		return nil, err
	}
	return c, nil
}

// Size returns the configured window length.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts doc into chunks. Every chunk except possibly the last is exactly
// Size characters long and starts Size-Overlap characters after its predecessor,
// so the chunks cover the whole document without gaps. A document no longer
// than Size yields exactly one chunk.
func (c *Chunker) Split(doc Document) ([]Chunk, error) {
	return Split(doc, c.size, c.overlap)
}

// Split is the functional form of Chunker.Split.
func Split(doc Document, size, overlap int) ([]Chunk, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	if doc.Content == "" {
		return nil, &InvalidInputError{Field: "content", Message: "cannot be empty"}
	}

	runes := []rune(doc.Content)
	step := size - overlap

	chunks := make([]Chunk, 0, len(runes)/step+1)
	for start := 0; ; start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Content:    string(runes[start:end]),
			Source:     doc.Source,
			Start:      start,
			End:        end,
			UploadedAt: doc.UploadedAt,
		})
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return &InvalidInputError{Field: "chunkSize", Message: "must be greater than 0"}
	}
	if overlap < 0 {
		return &InvalidInputError{Field: "overlap", Message: "must not be negative"}
	}
	if size <= overlap {
		return &InvalidInputError{
			Field:   "chunkSize",
			Message: fmt.Sprintf("must be greater than overlap (%d <= %d)", size, overlap),
		}
	}
	return nil
}
