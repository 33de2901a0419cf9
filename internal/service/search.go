package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks -mock_names=SearchService=MockSearchService mansahay-rag/internal/service SearchService

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/fusion"
)

// SearchRequest represents a knowledge base search in the domain layer.
type SearchRequest struct {
	Query      string
	Collection string // Empty means the configured default
	TopK       int    // 0 means the configured default
}

// SearchResult is one fused chunk.
type SearchResult struct {
	Content string
	Source  string
	// Score is 1 unless fused scores are exposed, in which case it is the RRF
	// rank score. It is never a probability.
	Score float64
}

// SearchResponse holds the fused results and every query variant searched.
type SearchResponse struct {
	Results    []SearchResult
	Variations []string
}

// SearchService runs multi-query fusion search.
type SearchService interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	Collection       string
	Expansions       int
	PerVariantK      int
	TopK             int
	MaxParallel      int
	ExposeFusedScore bool
}

// searchService implements SearchService.
type searchService struct {
	expander    QueryExpander
	retriever   Retriever
	collections CollectionChecker
	fuser       *fusion.Fuser
	cfg         SearchConfig
}

// NewSearchService creates a new SearchService.
func NewSearchService(expander QueryExpander, retriever Retriever, collections CollectionChecker, fuser *fusion.Fuser, cfg SearchConfig) SearchService {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return &searchService{
		expander:    expander,
		retriever:   retriever,
		collections: collections,
		fuser:       fuser,
		cfg:         cfg,
	}
}

// Search expands the query, searches every variant in parallel and fuses the
// ranked lists. A failed variant contributes an empty list; the search fails
// only when every variant failed.
func (s *searchService) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		logger.WarnContext(ctx, "empty query in search request")
		return SearchResponse{}, &ValidationError{
			Field:   "query",
			Message: "cannot be empty",
		}
	}

	if err := validateCollection(req.Collection); err != nil {
		return SearchResponse{}, err
	}
	collection := req.Collection
	if collection == "" {
		collection = s.cfg.Collection
	}
	if collection != s.cfg.Collection {
		exists, err := s.collections.CollectionExists(ctx, collection)
		if err != nil {
			return SearchResponse{}, &VectorStoreError{Op: "check collection", Collection: collection, Err: err}
		}
		if !exists {
			logger.WarnContext(ctx, "search on unknown collection", "collection", collection)
			return SearchResponse{}, fmt.Errorf("collection %q: %w", collection, ErrNotFound)
		}
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	variants := s.variants(ctx, query)

	lists, err := s.searchVariants(ctx, collection, variants)
	if err != nil {
		return SearchResponse{}, err
	}

	fused := s.fuser.Fuse(lists, topK)
	results := make([]SearchResult, len(fused))
	for i, r := range fused {
		score := 1.0
		if s.cfg.ExposeFusedScore {
			score = r.Score
		}
		results[i] = SearchResult{
			Content: r.Content,
			Source:  r.Source,
			Score:   score,
		}
	}

	logger.InfoContext(ctx, "search completed",
		"collection", collection,
		"variants", len(variants),
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return SearchResponse{
		Results:    results,
		Variations: variants,
	}, nil
}

// variants returns the original query followed by its expansions, without
// case-insensitive duplicates. Expansion failure leaves only the original.
func (s *searchService) variants(ctx context.Context, query string) []string {
	logger := contextutil.LoggerFromContext(ctx)

	variants := []string{query}
	if s.cfg.Expansions <= 0 {
		return variants
	}

	expansions, err := s.expander.Expand(ctx, query, s.cfg.Expansions)
	if err != nil {
		logger.WarnContext(ctx, "query expansion failed, using original query only", "error", err)
		return variants
	}

	seen := map[string]bool{strings.ToLower(query): true}
	for _, v := range expansions {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, strings.TrimSpace(v))
	}
	return variants
}

// searchVariants runs one retrieval per variant with bounded parallelism and
// collects every outcome.
func (s *searchService) searchVariants(ctx context.Context, collection string, variants []string) ([][]fusion.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	lists := make([][]fusion.Document, len(variants))
	errs := make([]error, len(variants))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxParallel)
	for i, variant := range variants {
		g.Go(func() error {
			docs, err := s.retriever.Retrieve(ctx, collection, variant, s.cfg.PerVariantK)
			if err != nil {
				errs[i] = err
				return nil
			}
			lists[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		logger.WarnContext(ctx, "variant search failed", "variant", variants[i], "error", err)
	}

	if failed == len(variants) {
		logger.ErrorContext(ctx, "all variant searches failed", "collection", collection, "variants", len(variants))
		return nil, firstErr
	}
	return lists, nil
}

var collectionName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// validateCollection rejects collection names Qdrant would refuse. Empty
// means the configured default.
func validateCollection(name string) error {
	if name == "" || collectionName.MatchString(name) {
		return nil
	}
	return &ValidationError{Field: "collection", Message: "must be 1-255 letters, digits, '_' or '-'"}
}
