package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mansahay-rag/internal/handlers"
	"mansahay-rag/internal/service"
	"mansahay-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	IngestService   service.IngestService
	SearchService   service.SearchService
	ResourceService service.ResourceService
	ChatService     service.ChatService
	VectorStore     vectorstore.VectorStore
	CollectionName  string
	UploadDir       string
	MaxUploadBytes  int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	ingestHandler := handlers.NewIngestHandler(deps.IngestService, deps.UploadDir, deps.MaxUploadBytes)
	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	resourceHandler := handlers.NewResourceHandler(deps.ResourceService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	r.Get("/health", healthHandler.Live)
	r.Method(http.MethodGet, "/health/ready", healthHandler)

	r.Method(http.MethodPost, "/ingest", ingestHandler)
	r.Method(http.MethodPost, "/search", searchHandler)

	r.Get("/resources", resourceHandler.List)
	r.Get("/resources/{id}", resourceHandler.Get)
	r.Delete("/resource/{filename}", resourceHandler.Delete)

	r.Method(http.MethodPost, "/chat", chatHandler)
	r.Post("/chat/title", chatHandler.Title)

	return r
}
