package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/service"
)

// IngestHandler handles document uploads.
type IngestHandler struct {
	ingestService  service.IngestService
	uploadDir      string
	maxUploadBytes int64
}

// NewIngestHandler creates a new IngestHandler. Uploads are spooled to
// uploadDir and rejected above maxUploadBytes.
func NewIngestHandler(ingestService service.IngestService, uploadDir string, maxUploadBytes int64) *IngestHandler {
	return &IngestHandler{
		ingestService:  ingestService,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// IngestResponse represents the HTTP response payload for a successful upload.
//
// swagger:model IngestResponse
type IngestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Number of chunks stored
	Chunks int `json:"chunks"`
	// Resource identifier, usable with GET /resources/{id}
	FileID string `json:"fileId"`
}

// ServeHTTP handles multipart uploads in the "file" field.
//
// swagger:route POST /ingest ingestDocument
//
// Upload a PDF, Markdown or text document into the knowledge base.
//
// ---
// consumes:
// - multipart/form-data
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/IngestResponse"
//	'400':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'415':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			logger.WarnContext(ctx, "upload too large", "content_length", r.ContentLength, "limit", h.maxUploadBytes)
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.WarnContext(ctx, "upload too large", "limit", maxErr.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", maxErr.Limit))
			return
		}
		logger.WarnContext(ctx, "no file in upload", "error", err)
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	tmpPath, err := h.spool(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to store upload", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	result, err := h.ingestService.IngestFile(ctx, service.IngestFileRequest{
		Path:            tmpPath,
		Filename:        filepath.Base(header.Filename),
		MIMEType:        header.Header.Get("Content-Type"),
		Collection:      r.FormValue("collection"),
		RemoveOnSuccess: true,
	})
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to process document")
		return
	}

	writeJSON(ctx, w, http.StatusOK, IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully processed %s", result.Source),
		Chunks:  result.Chunks,
		FileID:  result.ResourceID,
	})
}

// spool copies an upload into a new file under uploadDir.
func (h *IngestHandler) spool(src io.Reader) (string, error) {
	dst, err := os.CreateTemp(h.uploadDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return dst.Name(), nil
}
