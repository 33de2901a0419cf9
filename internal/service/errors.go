package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrUnsupportedFormat is returned when an uploaded file cannot be turned into text.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedFormatError is returned when a document loader cannot parse a file.
// TempPath names the uploaded file, which is kept for inspection.
type UnsupportedFormatError struct {
	Filename string
	TempPath string
	Err      error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format for %s: %v", e.Filename, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExpansionError is returned when query expansion fails or yields nothing usable.
// Search recovers from it by using the original query alone.
type ExpansionError struct {
	Query string
	Err   error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("query expansion failed: %v", e.Err)
}

func (e *ExpansionError) Unwrap() error { return e.Err }

// EmbeddingError is returned when the embedding provider fails.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s failed: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

func (e *EmbeddingError) Is(target error) bool {
	return target == ErrExternalService
}

// VectorStoreError is returned when the vector store fails.
type VectorStoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *VectorStoreError) Unwrap() error { return e.Err }

func (e *VectorStoreError) Is(target error) bool {
	return target == ErrExternalService
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
