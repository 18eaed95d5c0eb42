package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"

// errUnexpectedPage is returned for pages without any result markup, such as
// the anomaly/captcha page DuckDuckGo serves with a 200 status.
var errUnexpectedPage = errors.New("unexpected page without result container")

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	client  *resty.Client
	baseURL string
}

type DuckDuckGoOption func(*DuckDuckGo)

func WithDuckDuckGoURL(u string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.baseURL = u
	}
}

func WithDuckDuckGoClient(c *resty.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = c
	}
}

func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{baseURL: duckDuckGoHTMLURL}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = resty.New()
	}
	return d
}

func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Referer", "https://duckduckgo.com/").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		Get(d.baseURL)
	if err != nil {
		return nil, backendError(d.Name(), err)
	}
	if resp.IsError() {
		return nil, backendError(d.Name(), fmt.Errorf("status %d", resp.StatusCode()))
	}

	results, err := parseDuckDuckGoHTML(resp.Body())
	if err != nil {
		return nil, backendError(d.Name(), err)
	}
	return truncate(results, limit), nil
}

func parseDuckDuckGoHTML(body []byte) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	// an empty search still renders a .no-results block
	if doc.Find(".result").Length() == 0 && doc.Find(".no-results").Length() == 0 {
		return nil, errUnexpectedPage
	}

	var results []Result
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") || s.HasClass("result--no-result") {
			return
		}
		link := s.Find("a.result__a").First()
		title := normalizeSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := normalizeSpace(s.Find(".result__snippet").First().Text())
		if title == "" && snippet == "" {
			return
		}
		results = append(results, Result{
			Title:   title,
			URL:     resolveDuckDuckGoLink(href),
			Snippet: snippet,
		})
	})
	return results, nil
}

// resolveDuckDuckGoLink unwraps redirect links of the form //duckduckgo.com/l/?uddg=<target>.
func resolveDuckDuckGoLink(href string) string {
	if href == "" {
		return ""
	}
	raw := href
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}
