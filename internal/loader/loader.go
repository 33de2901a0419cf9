// Package loader extracts plain text from uploaded files.
package loader

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when a file cannot be turned into text.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptyDocument is returned for files with no extractable text.
	ErrEmptyDocument = fmt.Errorf("%w: empty document", ErrUnsupportedFormat)
)

// Format is the loader used for a file.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Document is the text extracted from one file.
type Document struct {
	Text   string
	Format Format
	// Pages is the number of PDF pages that produced text; 0 for other formats.
	Pages int
}

// Detect picks a Format from the MIME type, falling back to the file extension.
// Anything that is neither PDF nor Markdown is treated as plain text.
func Detect(filename, mimeType string) Format {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		switch mediaType {
		case "application/pdf":
			return FormatPDF
		case "text/markdown", "text/x-markdown":
			return FormatMarkdown
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatText
}

// Load reads the file at path and extracts its text. filename is the name the
// file was uploaded under and, with mimeType, decides which loader runs.
// Unparseable and empty files fail with an error wrapping ErrUnsupportedFormat.
func Load(path, filename, mimeType string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return Document{}, fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}

	format := Detect(filename, mimeType)

	var doc Document
	switch format {
	case FormatPDF:
		doc, err = loadPDF(path)
	case FormatMarkdown:
		doc, err = loadMarkdown(path)
	default:
		doc, err = loadText(path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", filename, err)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}
	return doc, nil
}
