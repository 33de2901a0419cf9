package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks mansahay-rag/internal/service Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_completer.go -package=mocks mansahay-rag/internal/service ChatCompleter
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks mansahay-rag/internal/service Retriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_query_expander.go -package=mocks mansahay-rag/internal/service QueryExpander

import (
	"context"

	"mansahay-rag/internal/fusion"
	"mansahay-rag/internal/llm"
)

// Embedder turns texts into vectors.
// This interface is defined from the service layer's perspective (consumer-first).
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter sends a conversation to the LLM and returns its first choice.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []llm.Message, params llm.ChatParams) (*llm.Completion, error)
}

// Retriever returns the k chunks most similar to one query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, collection, query string, k int) ([]fusion.Document, error)
}

// QueryExpander produces alternative phrasings of a query. The result never
// includes the query itself and may hold fewer than n entries.
type QueryExpander interface {
	Expand(ctx context.Context, query string, n int) ([]string, error)
}

// CollectionChecker reports whether a vector collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
