// Package websearch provides a client for a JSON web-search API.
// An empty result list is a valid, meaningful response: it means the
// query has no online footprint at all.
package websearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/resilience"
)

const defaultBaseURL = "https://s.jina.ai"

// Result is a single ranked search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"description"`
}

// Client performs web searches.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Code int      `json:"code"`
	Data []Result `json:"data"`
}

func (c *httpClient) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := c.baseURL + "/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, eris.Wrap(err, "websearch: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("websearch: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.Retryable(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "websearch: unmarshal response")
	}

	return parsed.Data, nil
}
