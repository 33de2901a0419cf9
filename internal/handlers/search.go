package handlers

import (
	"net/http"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/service"
)

// SearchHandler handles knowledge base searches.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchRequest represents the HTTP request payload for search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection,omitempty"`
	TopK       int    `json:"topK,omitempty"`
}

// SearchResultResponse is one fused chunk.
//
// swagger:model SearchResultResponse
type SearchResultResponse struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// SearchResponse represents the HTTP response payload for search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
	// Every query variant that was searched, original first
	Variations []string `json:"variations"`
}

// ServeHTTP handles search requests.
//
// swagger:route POST /search searchKnowledgeBase
//
// Multi-query fusion search over ingested documents.
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
//	'400':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svcResp, err := h.searchService.Search(ctx, service.SearchRequest{
		Query:      req.Query,
		Collection: req.Collection,
		TopK:       req.TopK,
	})
	if err != nil {
		writeServiceError(ctx, w, err, "Search failed")
		return
	}

	resp := SearchResponse{
		Results:    make([]SearchResultResponse, len(svcResp.Results)),
		Variations: svcResp.Variations,
	}
	for i, res := range svcResp.Results {
		resp.Results[i] = SearchResultResponse{
			Content: res.Content,
			Source:  res.Source,
			Score:   res.Score,
		}
	}
	if resp.Variations == nil {
		resp.Variations = []string{}
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
