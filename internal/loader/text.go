package loader

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readText reads a file that must be UTF-8 text. Binary content (invalid
// UTF-8 or NUL bytes) is rejected.
func readText(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return nil, fmt.Errorf("%w: not UTF-8 text", ErrUnsupportedFormat)
	}
	return content, nil
}

func loadText(path string) (Document, error) {
	content, err := readText(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Text: string(content), Format: FormatText}, nil
}
