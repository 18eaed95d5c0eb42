package search

import (
	"songbird/config"

	"github.com/pkg/errors"
)

// NewRegistryFromConfig registers every backend the config can build and makes
// cfg.Provider the default.
func NewRegistryFromConfig(cfg config.SearchConfig) (*Registry, error) {
	reg := NewRegistry()
	reg.Register("duckduckgo", NewDuckDuckGo())

	feed, err := NewFeed(cfg.FeedURL)
	if err != nil {
		return nil, err
	}
	reg.Register("feed", feed)

	if cfg.SearxngURL != "" {
		sx, err := NewSearxng(cfg.SearxngURL, "")
		if err != nil {
			return nil, err
		}
		reg.Register("searxng", sx)
	}

	if cfg.Provider != "" {
		if err := reg.SetDefault(cfg.Provider); err != nil {
			return nil, errors.Wrap(err, "SEARCH_PROVIDER")
		}
	}
	return reg, nil
}
