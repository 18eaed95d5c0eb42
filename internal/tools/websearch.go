package tools

import (
	"context"
	"strings"

	"songbird/internal/llm"
	"songbird/internal/search"

	"github.com/pkg/errors"
)

const (
	WebSearchName        = "web_search"
	DefaultSearchLimit   = 5
	webSearchDescription = "This is a web search tool to get responses from the web for a query. Returns the findings as a string."
)

var ErrMissingQuery = errors.New("missing query parameter")

// WebSearch exposes a search backend to the model as the web_search tool.
type WebSearch struct {
	searcher search.Searcher
	limit    int
}

func NewWebSearch(s search.Searcher, limit int) *WebSearch {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &WebSearch{searcher: s, limit: limit}
}

func (w *WebSearch) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        WebSearchName,
		Description: webSearchDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (w *WebSearch) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrMissingQuery
	}
	return w.Search(ctx, query)
}

// Search runs the query against the backend and renders at most limit results.
func (w *WebSearch) Search(ctx context.Context, query string) (string, error) {
	results, err := w.searcher.Search(ctx, query, w.limit)
	if err != nil {
		return "", err
	}
	if len(results) > w.limit {
		results = results[:w.limit]
	}
	return search.Format(results), nil
}
