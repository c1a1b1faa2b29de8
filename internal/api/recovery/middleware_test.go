package recovery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultshq/vaults-governance/internal/api/respond"
)

func TestNew_PanicBecomes500(t *testing.T) {
	var logged bytes.Buffer
	log := zerolog.New(&logged)

	handler := New(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingestion/sync", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Code)

	assert.Contains(t, logged.String(), "panic recovered")
	assert.Contains(t, logged.String(), "boom")
}

func TestNew_PassThroughWithoutPanic(t *testing.T) {
	var logged bytes.Buffer
	handler := New(zerolog.New(&logged))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, logged.String())
}
