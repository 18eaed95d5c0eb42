package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
)

const DefaultFeedURL = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

// Feed searches through an RSS/Atom search endpoint. urlTemplate holds one %s for the escaped query.
type Feed struct {
	parser      *gofeed.Parser
	urlTemplate string
}

func NewFeed(urlTemplate string) (*Feed, error) {
	if urlTemplate == "" {
		urlTemplate = DefaultFeedURL
	}
	if strings.Count(urlTemplate, "%s") != 1 {
		return nil, errors.Errorf("feed url template must contain exactly one %%s: %q", urlTemplate)
	}
	fp := gofeed.NewParser()
	fp.UserAgent = DefaultUserAgent
	return &Feed{parser: fp, urlTemplate: urlTemplate}, nil
}

func (f *Feed) Name() string {
	return "feed"
}

func (f *Feed) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	feedURL := fmt.Sprintf(f.urlTemplate, url.QueryEscape(query))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, backendError(f.Name(), err)
	}

	results := make([]Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		results = append(results, Result{
			Title:   normalizeSpace(item.Title),
			URL:     item.Link,
			Snippet: stripHTML(item.Description),
		})
	}
	return truncate(results, limit), nil
}

// stripHTML reduces feed descriptions, which are often HTML fragments, to plain text.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return normalizeSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normalizeSpace(s)
	}
	return normalizeSpace(doc.Text())
}
