package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrBackend marks a failure of the external search backend.
var ErrBackend = errors.New("search backend error")

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func backendError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, backend, err)
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
