package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mansahay-rag/internal/service"
	"mansahay-rag/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func resourceRouter(h *ResourceHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/resources", h.List)
	r.Get("/resources/{id}", h.Get)
	r.Delete("/resource/{filename}", h.Delete)
	return r
}

func TestResourceHandler_Delete(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		mockSetup   func(*mocks.MockResourceService)
		wantStatus  int
		wantDeleted int
	}{
		{
			name: "deletes chunks of a source",
			path: "/resource/sky.txt",
			mockSetup: func(m *mocks.MockResourceService) {
				m.EXPECT().DeleteBySource(gomock.Any(), "", "sky.txt").Return(service.DeleteResult{Resources: 1, Chunks: 2}, nil)
			},
			wantStatus:  http.StatusOK,
			wantDeleted: 2,
		},
		{
			name: "escaped filename and collection",
			path: "/resource/My%20Report.pdf?collection=journal",
			mockSetup: func(m *mocks.MockResourceService) {
				m.EXPECT().DeleteBySource(gomock.Any(), "journal", "My Report.pdf").Return(service.DeleteResult{}, nil)
			},
			wantStatus:  http.StatusOK,
			wantDeleted: 0,
		},
		{
			name: "vector store failure",
			path: "/resource/sky.txt",
			mockSetup: func(m *mocks.MockResourceService) {
				m.EXPECT().DeleteBySource(gomock.Any(), "", "sky.txt").
					Return(service.DeleteResult{}, &service.VectorStoreError{Op: "delete", Collection: "kb", Err: http.ErrHandlerTimeout})
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockResources := mocks.NewMockResourceService(ctrl)
			tt.mockSetup(mockResources)
			router := resourceRouter(NewResourceHandler(mockResources))

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("DELETE %s status = %v, want %v (body %s)", tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp DeleteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if !resp.Success || resp.Deleted != tt.wantDeleted {
				t.Errorf("response = %+v, want success with %d deleted", resp, tt.wantDeleted)
			}
		})
	}
}

func TestResourceHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockResources := mocks.NewMockResourceService(ctrl)
	mockResources.EXPECT().Get(gomock.Any(), "res-1").Return(service.ResourceDetail{
		Resource: service.Resource{
			ID:         "res-1",
			Source:     "Monday",
			Kind:       "journal",
			ChunkCount: 1,
			UploadedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		Content: "Felt calmer today.",
	}, nil)
	mockResources.EXPECT().Get(gomock.Any(), "missing").Return(service.ResourceDetail{}, service.ErrNotFound)

	router := resourceRouter(NewResourceHandler(mockResources))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources/res-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /resources/res-1 status = %v", w.Code)
	}
	var resp ResourceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Content != "Felt calmer today." || resp.UploadedAt != "2026-03-01T09:00:00Z" || resp.Kind != "journal" {
		t.Errorf("response = %+v", resp)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /resources/missing status = %v, want 404", w.Code)
	}
}

func TestResourceHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockResources := mocks.NewMockResourceService(ctrl)
	mockResources.EXPECT().List(gomock.Any(), "").Return([]service.Resource{
		{ID: "res-2", Source: "b.md"},
		{ID: "res-1", Source: "a.pdf"},
	}, nil)

	router := resourceRouter(NewResourceHandler(mockResources))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /resources status = %v", w.Code)
	}
	var resp ResourceListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Resources) != 2 || resp.Resources[0].ID != "res-2" || resp.Resources[0].Content != "" {
		t.Errorf("response = %+v", resp)
	}
}
