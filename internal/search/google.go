// Package search implements the web-search discovery client.
package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleClient queries the Google Custom Search JSON API for candidate
// article URLs.
type GoogleClient struct {
	service  *customsearch.Service
	engineID string
}

// NewGoogleClient builds a client authenticated with an API key against a
// programmable search engine.
func NewGoogleClient(ctx context.Context, apiKey, engineID string) (*GoogleClient, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("search api key and engine id are required")
	}
	service, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	return &GoogleClient{service: service, engineID: engineID}, nil
}

// Search runs one query and returns up to limit result URLs. Results that are
// not absolute http(s) URLs are dropped.
func (c *GoogleClient) Search(ctx context.Context, query string, limit int) ([]string, error) {
	call := c.service.Cse.List().
		Q(query).
		Cx(c.engineID).
		Num(int64(limit)).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("customsearch query %q: %w", query, err)
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if strings.HasPrefix(item.Link, "http") {
			urls = append(urls, item.Link)
		}
	}
	return urls, nil
}

// NoOpClient returns no results. It keeps the pipeline runnable without
// search credentials.
type NoOpClient struct{}

// Search always returns an empty result set.
func (NoOpClient) Search(_ context.Context, _ string, _ int) ([]string, error) {
	return nil, nil
}
