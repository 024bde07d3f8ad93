// Package searchapi implements the SiteDiscovery contract against an HTTP
// JSON search API. The endpoint is configured as a URL template with a
// {query} placeholder (Brave-style), the key goes in a subscription header.
package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/harvester-service/internal/repository"
)

const queryToken = "{query}"

// Client calls the discovery search API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	maxResults int
}

func NewClient(endpoint, apiKey string, maxResults int, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
	}
}

// searchResponse accepts the two common result shapes: a flat results array
// and a nested web.results array.
type searchResponse struct {
	Results []searchResult `json:"results"`
	Web     struct {
		Results []searchResult `json:"results"`
	} `json:"web"`
}

type searchResult struct {
	URL string `json:"url"`
}

// Discover runs the query and returns at most maxResults candidate URLs;
// a non-positive maxResults means no cap. HTTP 429/402 map onto
// ErrRateLimited so callers back off instead of burning quota.
func (c *Client) Discover(ctx context.Context, query string) ([]string, error) {
	if !strings.Contains(c.endpoint, queryToken) {
		return nil, fmt.Errorf("discover: endpoint %q has no %s token", c.endpoint, queryToken)
	}
	searchURL := strings.ReplaceAll(c.endpoint, queryToken, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", query, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Subscription-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", query, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("discover %q: status %d: %w", query, resp.StatusCode, repository.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("discover %q: unexpected status %d", query, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("discover %q: decode response: %w", query, err)
	}

	results := payload.Results
	if len(results) == 0 {
		results = payload.Web.Results
	}

	var urls []string
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		urls = append(urls, r.URL)
		if c.maxResults > 0 && len(urls) >= c.maxResults {
			break
		}
	}
	return urls, nil
}
