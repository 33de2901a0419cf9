package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mansahay-rag/internal/service"
)

func newSearchCmd(get func() *deps) *cobra.Command {
	var (
		collection string
		topK       int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge base",
		Long: `Runs the same multi-query search as POST /search: the query is expanded
into alternative phrasings, each is searched and the ranked lists are fused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := get().search.Search(cmd.Context(), service.SearchRequest{
				Query:      strings.Join(args, " "),
				Collection: collection,
				TopK:       topK,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return outputSearchJSON(cmd, resp)
			}
			outputSearchText(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection to search (default from QDRANT_COLLECTION)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of fused results (default from tuning)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

type searchJSON struct {
	Results    []searchResultJSON `json:"results"`
	Variations []string           `json:"variations"`
}

type searchResultJSON struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

func outputSearchJSON(cmd *cobra.Command, resp service.SearchResponse) error {
	out := searchJSON{
		Results:    make([]searchResultJSON, len(resp.Results)),
		Variations: resp.Variations,
	}
	for i, r := range resp.Results {
		out.Results[i] = searchResultJSON{Content: r.Content, Source: r.Source, Score: r.Score}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, resp service.SearchResponse) {
	cmd.Printf("Variations: %s\n\n", strings.Join(resp.Variations, " | "))
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, r := range resp.Results {
		cmd.Printf("  [%d] %s\n", i+1, r.Source)
		cmd.Printf("      %s\n\n", snippet(r.Content, 200))
	}
}

// snippet flattens whitespace and cuts s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
