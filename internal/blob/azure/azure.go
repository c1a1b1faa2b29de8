// Package azure writes archival blobs to an Azure Blob Storage container over
// its REST surface.
package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vaultshq/vaults-governance/internal/identity"
)

// Store PUTs block blobs into a single container. The resty client is owned by
// the store and constructed once.
type Store struct {
	client    *resty.Client
	container string
	tokens    identity.TokenSource
}

// New creates a Store for the given account endpoint and container.
func New(endpoint, container string, tokens identity.TokenSource) *Store {
	c := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(60 * time.Second)
	return &Store{client: c, container: container, tokens: tokens}
}

// Put uploads data as a block blob at container/path. Re-uploading the same
// path replaces the blob, so blob writes stay idempotent by record id.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	tok, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire storage token: %w", err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetHeader("x-ms-blob-type", "BlockBlob").
		SetHeader("x-ms-version", "2023-11-03").
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Put(fmt.Sprintf("/%s/%s", s.container, path))
	if err != nil {
		return fmt.Errorf("blob put: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("blob put status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
