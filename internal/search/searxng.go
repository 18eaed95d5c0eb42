package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Searxng queries a SearxNG instance through its JSON API.
type Searxng struct {
	client   *resty.Client
	baseURL  string
	language string
}

type searxngResponse struct {
	Query   string `json:"query"`
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

func NewSearxng(baseURL, language string) (*Searxng, error) {
	if baseURL == "" {
		return nil, errors.New("missing SEARXNG_URL")
	}
	return &Searxng{
		client:   resty.New(),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
	}, nil
}

func (s *Searxng) Name() string {
	return "searxng"
}

func (s *Searxng) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := map[string]string{
		"q":          query,
		"format":     "json",
		"safesearch": "0",
		"categories": "general,music",
	}
	if s.language != "" {
		params["language"] = s.language
	}

	var body searxngResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("Accept", "application/json").
		SetResult(&body).
		Get(s.baseURL + "/search")
	if err != nil {
		return nil, backendError(s.Name(), err)
	}
	if resp.IsError() {
		return nil, backendError(s.Name(), fmt.Errorf("non-200 response from search engine: %d", resp.StatusCode()))
	}

	results := make([]Result, 0, len(body.Results))
	for _, r := range body.Results {
		if r.Title == "" || r.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:   normalizeSpace(r.Title),
			URL:     r.URL,
			Snippet: normalizeSpace(r.Content),
		})
	}
	return truncate(results, limit), nil
}
