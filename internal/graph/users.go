package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vaultshq/vaults-governance/internal/retry"
)

type userPage struct {
	NextLink string `json:"@odata.nextLink"`
	Value    []struct {
		ID string `json:"id"`
	} `json:"value"`
}

// UserEnumerator pages through the full list of tenant principals.
type UserEnumerator struct {
	client   *Client
	pageSize int
	retry    retry.Policy
}

// NewUserEnumerator builds an enumerator with the given page size.
func NewUserEnumerator(client *Client, pageSize int, policy retry.Policy) *UserEnumerator {
	if pageSize <= 0 {
		pageSize = 999
	}
	return &UserEnumerator{client: client, pageSize: pageSize, retry: policy}
}

// ListUsers returns the complete, deduplicated set of user ids for the tenant,
// following continuation links until exhausted. Transient faults are retried
// with backoff; exhausting the retry budget (or any other error) is fatal to
// the caller's pass.
func (e *UserEnumerator) ListUsers(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string

	url := "/users"
	query := map[string]string{
		"$select": "id",
		"$top":    strconv.Itoa(e.pageSize),
	}

	for url != "" {
		var page userPage
		err := e.retry.Do(ctx, "list users", func() error {
			page = userPage{}
			return e.client.get(ctx, url, query, &page)
		})
		if err != nil {
			return nil, fmt.Errorf("enumerate users: %w", err)
		}

		for _, u := range page.Value {
			if u.ID == "" {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			ids = append(ids, u.ID)
		}

		// Continuation links are absolute and already carry the paging params.
		url = page.NextLink
		query = nil
	}
	return ids, nil
}
