package graph

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/retry"
)

type interactionPayload struct {
	ID              string `json:"id"`
	SessionID       string `json:"sessionId"`
	InteractionType string `json:"interactionType"`
	CreatedDateTime string `json:"createdDateTime"`
	Body            struct {
		Content string `json:"content"`
	} `json:"body"`
}

type interactionPage struct {
	NextLink string               `json:"@odata.nextLink"`
	Value    []interactionPayload `json:"value"`
}

// InteractionFetcher pages per-user interaction events created after a
// checkpoint timestamp.
type InteractionFetcher struct {
	client   *Client
	pageSize int
	retry    retry.Policy
}

// NewInteractionFetcher builds a fetcher with the given page size.
func NewInteractionFetcher(client *Client, pageSize int, policy retry.Policy) *InteractionFetcher {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &InteractionFetcher{client: client, pageSize: pageSize, retry: policy}
}

// InteractionsSince returns a pager over events for one user created strictly
// after since, ordered by creation time. Pages are fetched on demand so a long
// history never has to sit in memory at once.
func (f *InteractionFetcher) InteractionsSince(userID string, since time.Time) *InteractionPager {
	return &InteractionPager{fetcher: f, userID: userID, since: since}
}

// InteractionPager yields one page of events per Next call; a nil page with a
// nil error means the sequence is exhausted.
type InteractionPager struct {
	fetcher *InteractionFetcher
	userID  string
	since   time.Time

	next string
	done bool
}

// Next fetches the next page. Transient faults are retried with backoff;
// exhausting the budget surfaces as an error scoped to this user.
func (p *InteractionPager) Next(ctx context.Context) ([]model.RawInteractionEvent, error) {
	if p.done {
		return nil, nil
	}

	url := p.next
	var query map[string]string
	if url == "" {
		url = fmt.Sprintf("/copilot/users/%s/interactionHistory/getAllEnterpriseInteractions", p.userID)
		query = map[string]string{
			"$top":    strconv.Itoa(p.fetcher.pageSize),
			"$filter": fmt.Sprintf("createdDateTime gt %s", p.since.UTC().Format(time.RFC3339Nano)),
		}
	}

	var page interactionPage
	err := p.fetcher.retry.Do(ctx, "list interactions", func() error {
		page = interactionPage{}
		return p.fetcher.client.get(ctx, url, query, &page)
	})
	if err != nil {
		p.done = true
		return nil, fmt.Errorf("fetch interactions for user %s: %w", p.userID, err)
	}

	events := make([]model.RawInteractionEvent, 0, len(page.Value))
	for _, raw := range page.Value {
		ev, ok := p.fetcher.mapEvent(raw, p.userID)
		if !ok {
			continue
		}
		// Re-check the since filter locally; the upstream filter has shown
		// off-by-one behavior around clock skew.
		if !ev.CreatedAt.After(p.since) {
			continue
		}
		events = append(events, ev)
	}

	p.next = page.NextLink
	if p.next == "" {
		p.done = true
	}
	return events, nil
}

// mapEvent converts a raw payload into the typed event model. Payloads with an
// unknown interaction type or an unparseable timestamp are dropped, not
// defaulted.
func (f *InteractionFetcher) mapEvent(raw interactionPayload, userID string) (model.RawInteractionEvent, bool) {
	var kind model.InteractionType
	switch raw.InteractionType {
	case string(model.InteractionUserPrompt):
		kind = model.InteractionUserPrompt
	case string(model.InteractionAiResponse):
		kind = model.InteractionAiResponse
	default:
		f.client.log.Warn().
			Str("interaction_id", raw.ID).
			Str("interaction_type", raw.InteractionType).
			Msg("dropping event with unknown interaction type")
		return model.RawInteractionEvent{}, false
	}

	created, err := time.Parse(time.RFC3339Nano, raw.CreatedDateTime)
	if err != nil {
		f.client.log.Warn().
			Str("interaction_id", raw.ID).
			Str("created", raw.CreatedDateTime).
			Msg("dropping event with unparseable timestamp")
		return model.RawInteractionEvent{}, false
	}

	return model.RawInteractionEvent{
		ID:              raw.ID,
		SessionID:       raw.SessionID,
		UserID:          userID,
		InteractionType: kind,
		CreatedAt:       created,
		BodyContent:     raw.Body.Content,
	}, true
}
