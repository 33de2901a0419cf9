package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mansahay-rag/internal/llm"
)

const expansionPrompt = `You are a helpful AI assistant. Generate %d different search queries based on the user question to retrieve relevant documents from a vector database.
User Question: %q
Output only the %d queries separated by newlines. No numbering.`

// llmExpander asks the chat model for alternative phrasings of a query.
type llmExpander struct {
	llm     ChatCompleter
	timeout time.Duration
}

// NewQueryExpander creates a QueryExpander backed by the chat model.
func NewQueryExpander(completer ChatCompleter, timeout time.Duration) QueryExpander {
	return &llmExpander{
		llm:     completer,
		timeout: timeout,
	}
}

// Expand returns at most n alternative phrasings of query.
func (e *llmExpander) Expand(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	completion, err := e.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(expansionPrompt, n, query, n)},
	}, llm.ChatParams{})
	if err != nil {
		return nil, &ExpansionError{Query: query, Err: err}
	}

	variants := parseVariants(completion.Content)
	if len(variants) == 0 {
		return nil, &ExpansionError{Query: query, Err: fmt.Errorf("no usable lines in %q", completion.Content)}
	}
	if len(variants) > n {
		variants = variants[:n]
	}
	return variants, nil
}

// listMarker matches enumeration prefixes models add despite instructions:
// "1.", "2)", "-", "*", "•".
var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)

// parseVariants splits model output into one query per non-blank line.
func parseVariants(text string) []string {
	var variants []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, "\"'`")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variants = append(variants, line)
	}
	return variants
}
