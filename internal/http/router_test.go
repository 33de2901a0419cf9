package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mansahay-rag/internal/service"
	"mansahay-rag/internal/service/mocks"
	vectorstore_mocks "mansahay-rag/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

type routerMocks struct {
	ingest    *mocks.MockIngestService
	search    *mocks.MockSearchService
	resources *mocks.MockResourceService
	chat      *mocks.MockChatService
	store     *vectorstore_mocks.MockVectorStore
}

func newTestRouter(t *testing.T, ctrl *gomock.Controller) (http.Handler, routerMocks) {
	m := routerMocks{
		ingest:    mocks.NewMockIngestService(ctrl),
		search:    mocks.NewMockSearchService(ctrl),
		resources: mocks.NewMockResourceService(ctrl),
		chat:      mocks.NewMockChatService(ctrl),
		store:     vectorstore_mocks.NewMockVectorStore(ctrl),
	}
	router := NewRouter(&Deps{
		IngestService:   m.ingest,
		SearchService:   m.search,
		ResourceService: m.resources,
		ChatService:     m.chat,
		VectorStore:     m.store,
		CollectionName:  "kb",
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
	})
	return router, m
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(t, ctrl)
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(m routerMocks)
		wantStatus int
	}{
		{
			name:       "GET /health is plain liveness",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /health/ready checks qdrant",
			method: http.MethodGet,
			path:   "/health/ready",
			mockSetup: func(m routerMocks) {
				m.store.EXPECT().CollectionExists(gomock.Any(), "kb").Return(true, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /ingest without file",
			method:     http.MethodPost,
			path:       "/ingest",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "POST /search",
			method: http.MethodPost,
			path:   "/search",
			body:   `{"query":"calm"}`,
			mockSetup: func(m routerMocks) {
				m.search.EXPECT().Search(gomock.Any(), service.SearchRequest{Query: "calm"}).Return(service.SearchResponse{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /resources",
			method: http.MethodGet,
			path:   "/resources",
			mockSetup: func(m routerMocks) {
				m.resources.EXPECT().List(gomock.Any(), "").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "DELETE /resource/{filename}",
			method: http.MethodDelete,
			path:   "/resource/sky.txt",
			mockSetup: func(m routerMocks) {
				m.resources.EXPECT().DeleteBySource(gomock.Any(), "", "sky.txt").Return(service.DeleteResult{Chunks: 2}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST /chat/title",
			method: http.MethodPost,
			path:   "/chat/title",
			body:   `{"message":"hello"}`,
			mockSetup: func(m routerMocks) {
				m.chat.EXPECT().GenerateTitle(gomock.Any(), "hello").Return("Hello", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /chat with bad body",
			method:     http.MethodPost,
			path:       "/chat",
			body:       "nope",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /search method not allowed",
			method:     http.MethodGet,
			path:       "/search",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			router, m := newTestRouter(t, ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(m)
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v (body %s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, m := newTestRouter(t, ctrl)
	m.search.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, _ service.SearchRequest) (service.SearchResponse, error) {
			panic("boom")
		})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"x"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("panicking handler status = %v, want 500", w.Code)
	}
}
