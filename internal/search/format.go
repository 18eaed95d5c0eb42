package search

import (
	"fmt"
	"strings"
)

const NoResults = "No results found."

// Format renders results as one text blob of title/snippet/url triples.
func Format(results []Result) string {
	if len(results) == 0 {
		return NoResults
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Title))
		if r.Snippet != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", r.Snippet))
		}
		if r.URL != "" {
			sb.WriteString(fmt.Sprintf("   URL: %s\n", r.URL))
		}
	}
	return sb.String()
}
