package service

import (
	"context"
	"fmt"
	"time"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/fusion"
	"mansahay-rag/internal/vectorstore"
)

// vectorRetriever embeds a query and runs a similarity search.
type vectorRetriever struct {
	embedder      Embedder
	vectorStore   vectorstore.VectorStore
	embedTimeout  time.Duration
	searchTimeout time.Duration
}

// NewRetriever creates a Retriever backed by an embedder and a vector store.
// Each call is bounded by its timeout; zero disables the bound.
func NewRetriever(embedder Embedder, vectorStore vectorstore.VectorStore, embedTimeout, searchTimeout time.Duration) Retriever {
	return &vectorRetriever{
		embedder:      embedder,
		vectorStore:   vectorStore,
		embedTimeout:  embedTimeout,
		searchTimeout: searchTimeout,
	}
}

// Retrieve returns the k nearest chunks to query.
func (r *vectorRetriever) Retrieve(ctx context.Context, collection, query string, k int) ([]fusion.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embedCtx, cancel := withTimeout(ctx, r.embedTimeout)
	embeddings, err := r.embedder.EmbedTexts(embedCtx, []string{query})
	cancel()
	if err != nil {
		return nil, &EmbeddingError{Op: "query", Err: err}
	}
	if len(embeddings) != 1 {
		return nil, &EmbeddingError{Op: "query", Err: fmt.Errorf("expected 1 embedding, got %d", len(embeddings))}
	}

	searchCtx, cancel := withTimeout(ctx, r.searchTimeout)
	results, err := r.vectorStore.Search(searchCtx, collection, embeddings[0], k, nil)
	cancel()
	if err != nil {
		return nil, &VectorStoreError{Op: "search", Collection: collection, Err: err}
	}

	docs := make([]fusion.Document, 0, len(results))
	for _, res := range results {
		doc, ok := documentFromResult(res)
		if !ok {
			logger.WarnContext(ctx, "skipping point without content", "point_id", res.PointID)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func documentFromResult(res vectorstore.SearchResult) (fusion.Document, bool) {
	content := vectorstore.MetaString(res.Meta, vectorstore.FieldContent)
	if content == "" {
		return fusion.Document{}, false
	}
	start, _ := vectorstore.MetaInt(res.Meta, vectorstore.FieldLocStart)
	end, _ := vectorstore.MetaInt(res.Meta, vectorstore.FieldLocEnd)
	return fusion.Document{
		PointID:       res.PointID,
		Content:       content,
		Source:        vectorstore.MetaString(res.Meta, vectorstore.FieldSource),
		LocationStart: start,
		LocationEnd:   end,
		Similarity:    res.Score,
	}, true
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
