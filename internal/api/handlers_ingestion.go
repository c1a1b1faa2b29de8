// Package api holds the HTTP handlers for the ingestion service.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/api/respond"
	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// TenantPassRunner runs one ingestion pass for a tenant.
type TenantPassRunner interface {
	RunTenantPass(ctx context.Context, tenantID string) (*model.SyncReport, error)
}

// IngestionHandler exposes the sync trigger, checkpoint status, and ingested
// conversation read endpoints.
type IngestionHandler struct {
	runner        TenantPassRunner
	states        store.SyncStates
	convs         store.Conversations
	defaultTenant string
	log           zerolog.Logger
}

// NewIngestionHandler creates an IngestionHandler.
func NewIngestionHandler(runner TenantPassRunner, states store.SyncStates, convs store.Conversations, defaultTenant string, log zerolog.Logger) *IngestionHandler {
	return &IngestionHandler{
		runner:        runner,
		states:        states,
		convs:         convs,
		defaultTenant: defaultTenant,
		log:           log.With().Str("component", "ingestion-api").Logger(),
	}
}

// TriggerSync handles POST /api/ingestion/sync?tenantId=...
// A missing tenantId falls back to the configured default tenant. Per-user
// failures do not fail the request; they surface in lastFailureMessage.
func (h *IngestionHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	report, err := h.runner.RunTenantPass(r.Context(), tenantID)
	if err != nil {
		h.log.Error().Stack().Err(err).Str("tenant_id", tenantID).Msg("tenant pass failed")
		respond.WriteBadGateway(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}

// GetStatus handles GET /api/ingestion/status?tenantId=...
func (h *IngestionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	state, err := h.states.Get(r.Context(), tenantID)
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "no sync state for tenant "+tenantID)
		return
	}
	if err != nil {
		h.log.Error().Stack().Err(err).Str("tenant_id", tenantID).Msg("failed to read sync state")
		respond.WriteInternalError(w, "failed to read sync state")
		return
	}
	respond.WriteJSON(w, http.StatusOK, state)
}

// ListConversations handles GET /api/ingestion/conversations?tenantId=&limit=
// Results come back newest first; limit defaults to the store's cap.
func (h *IngestionHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.convs.ListByTenant(r.Context(), tenantID, limit)
	if err != nil {
		h.log.Error().Stack().Err(err).Str("tenant_id", tenantID).Msg("failed to list conversations")
		respond.WriteInternalError(w, "failed to list conversations")
		return
	}
	if records == nil {
		records = []*model.ConversationRecord{}
	}
	respond.WriteJSON(w, http.StatusOK, records)
}

// GetConversation handles GET /api/ingestion/conversations/{conversationId}?tenantId=
func (h *IngestionHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}
	id := mux.Vars(r)["conversationId"]

	rec, err := h.convs.Get(r.Context(), tenantID, id)
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "no conversation "+id+" for tenant "+tenantID)
		return
	}
	if err != nil {
		h.log.Error().Stack().Err(err).Str("tenant_id", tenantID).Str("conversation_id", id).Msg("failed to read conversation")
		respond.WriteInternalError(w, "failed to read conversation")
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}
