package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultshq/vaults-governance/internal/model"
)

func interactionJSON(id, session, kind string, created time.Time, content string) map[string]interface{} {
	return map[string]interface{}{
		"id":              id,
		"sessionId":       session,
		"interactionType": kind,
		"createdDateTime": created.UTC().Format(time.RFC3339Nano),
		"body":            map[string]string{"content": content},
	}
}

func TestInteractionPager_PagesAndRefilters(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []map[string]interface{}{
					interactionJSON("e3", "s2", "aiResponse", since.Add(2*time.Hour), "answer"),
				},
			})
			return
		}

		assert.Equal(t, "100", r.URL.Query().Get("$top"))
		assert.Contains(t, r.URL.Query().Get("$filter"), "createdDateTime gt ")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"@odata.nextLink": srv.URL + "/next?page=2",
			"value": []map[string]interface{}{
				// at the boundary: upstream filter let it through, local filter must not
				interactionJSON("e0", "s0", "userPrompt", since, "stale"),
				interactionJSON("e1", "s1", "userPrompt", since.Add(time.Hour), "question"),
				interactionJSON("e2", "sX", "systemNotice", since.Add(time.Hour), "ignored kind"),
			},
		})
	}))
	defer srv.Close()

	f := NewInteractionFetcher(newTestClient(t, srv), 100, fastPolicy())
	pager := f.InteractionsSince("u1", since)

	page1, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page1, 1)
	assert.Equal(t, "e1", page1[0].ID)
	assert.Equal(t, model.InteractionUserPrompt, page1[0].InteractionType)
	assert.Equal(t, "u1", page1[0].UserID)

	page2, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "e3", page2[0].ID)

	done, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestInteractionPager_RetryExhaustionScopedToUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewInteractionFetcher(newTestClient(t, srv), 100, fastPolicy())
	pager := f.InteractionsSince("u42", time.Now())

	_, err := pager.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user u42")

	// The pager is finished after a fatal page error.
	page, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestMapEvent_DropsUnparseableTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]interface{}{
				{
					"id":              "bad",
					"sessionId":       "s1",
					"interactionType": "userPrompt",
					"createdDateTime": "yesterday-ish",
					"body":            map[string]string{"content": "x"},
				},
			},
		})
	}))
	defer srv.Close()

	f := NewInteractionFetcher(newTestClient(t, srv), 100, fastPolicy())
	page, err := f.InteractionsSince("u1", time.Time{}).Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page)
}
