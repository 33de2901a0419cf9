package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/service"
)

// ResourceHandler serves the resource registry: listing, reading and
// deleting ingested documents.
type ResourceHandler struct {
	resourceService service.ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resourceService service.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// ResourceResponse describes one ingested document.
//
// swagger:model ResourceResponse
type ResourceResponse struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Source     string `json:"source"`
	Kind       string `json:"kind"`
	MIMEType   string `json:"mimeType"`
	Chunks     int    `json:"chunks"`
	Characters int    `json:"characters"`
	UploadedAt string `json:"uploadedAt"`
	// Reconstructed text, only set by GET /resources/{id}
	Content string `json:"content,omitempty"`
}

// ResourceListResponse wraps a resource listing.
//
// swagger:model ResourceListResponse
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
}

// DeleteResponse reports a delete by filename.
//
// swagger:model DeleteResponse
type DeleteResponse struct {
	Success bool `json:"success"`
	// Number of chunks removed
	Deleted int `json:"deleted"`
}

// List handles GET /resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resources, err := h.resourceService.List(ctx, r.URL.Query().Get("collection"))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list resources")
		return
	}

	resp := ResourceListResponse{Resources: make([]ResourceResponse, len(resources))}
	for i, res := range resources {
		resp.Resources[i] = toResourceResponse(res)
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Get handles GET /resources/{id}.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	detail, err := h.resourceService.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to read resource")
		return
	}

	resp := toResourceResponse(detail.Resource)
	resp.Content = detail.Content
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Delete handles DELETE /resource/{filename}.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		logger.WarnContext(ctx, "invalid filename in path", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	result, err := h.resourceService.DeleteBySource(ctx, r.URL.Query().Get("collection"), filename)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to delete resource")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DeleteResponse{
		Success: true,
		Deleted: result.Chunks,
	})
}

func toResourceResponse(r service.Resource) ResourceResponse {
	return ResourceResponse{
		ID:         r.ID,
		Collection: r.Collection,
		Source:     r.Source,
		Kind:       r.Kind,
		MIMEType:   r.MIMEType,
		Chunks:     r.ChunkCount,
		Characters: r.CharCount,
		UploadedAt: r.UploadedAt.UTC().Format(time.RFC3339),
	}
}
