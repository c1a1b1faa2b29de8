// Package graph talks to the tenant directory and Copilot interaction-history
// APIs. One Client is constructed per process and shared by the enumerator and
// the fetcher.
package graph

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/identity"
)

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying: the API signals
// throttling with 429 and brief outages with 503.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// Client wraps a long-lived resty client with bearer auth.
type Client struct {
	http   *resty.Client
	tokens identity.TokenSource
	log    zerolog.Logger
}

// NewClient builds a Client for the given API base URL.
func NewClient(baseURL string, tokens identity.TokenSource, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(60 * time.Second)

	return &Client{http: c, tokens: tokens, log: log.With().Str("component", "graph").Logger()}
}

// get issues an authenticated GET. url may be a path relative to the base URL
// or an absolute continuation link returned by the API. The response body is
// unmarshaled into out; non-2xx statuses become *APIError.
func (c *Client) get(ctx context.Context, url string, query map[string]string, out interface{}) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetQueryParams(query).
		SetResult(out).
		Get(url)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}
