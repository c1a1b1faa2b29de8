// Package identity provides bearer tokens for outbound calls.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// TokenSource yields a bearer token for outbound API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static returns the same token forever. Used in tests and local dev.
type Static string

func (s Static) Token(context.Context) (string, error) { return string(s), nil }

// ClientCredentials implements the OAuth2 client-credentials flow against a
// token endpoint, caching the token until shortly before expiry. The resty
// client is constructed once and owned by the provider.
type ClientCredentials struct {
	client *resty.Client
	id     string
	secret string
	scope  string

	mu      sync.Mutex
	token   string
	expires time.Time

	now func() time.Time
}

// NewClientCredentials builds a provider for the given token endpoint.
func NewClientCredentials(endpoint, clientID, clientSecret, scope string) *ClientCredentials {
	c := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(30 * time.Second)

	return &ClientCredentials{
		client: c,
		id:     clientID,
		secret: clientSecret,
		scope:  scope,
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error_description"`
}

// Token returns a cached token, refreshing when it is within a minute of
// expiry.
func (p *ClientCredentials) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expires.Add(-time.Minute)) {
		return p.token, nil
	}

	var out tokenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     p.id,
			"client_secret": p.secret,
			"scope":         p.scope,
		}).
		SetResult(&out).
		SetError(&out).
		Post("")
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode(), out.Error)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	p.token = out.AccessToken
	p.expires = p.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return p.token, nil
}
