// Package ingest drives one full tenant ingestion pass: enumerate users,
// fetch interactions since the checkpoint, pair them into conversations,
// screen for PII, and persist through the dual writer.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/conversation"
	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/pii"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// UserLister produces the complete, deduplicated set of tenant principals.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// EventPager yields interaction events one page per Next call; a nil page
// with a nil error ends the sequence.
type EventPager interface {
	Next(ctx context.Context) ([]model.RawInteractionEvent, error)
}

// InteractionSource opens a pager over one user's events created after since.
type InteractionSource interface {
	InteractionsSince(userID string, since time.Time) EventPager
}

// SourceFunc adapts a function to the InteractionSource interface.
type SourceFunc func(userID string, since time.Time) EventPager

func (f SourceFunc) InteractionsSince(userID string, since time.Time) EventPager {
	return f(userID, since)
}

// Orchestrator runs tenant passes. Users are processed sequentially; a
// per-user failure is recorded and skipped, a user-enumeration failure aborts
// the pass.
type Orchestrator struct {
	users  UserLister
	source InteractionSource
	writer ConversationWriter
	states store.SyncStates
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(users UserLister, source InteractionSource, writer ConversationWriter, states store.SyncStates, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		users:  users,
		source: source,
		writer: writer,
		states: states,
		log:    log.With().Str("component", "orchestrator").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RunTenantPass executes one pass for the tenant and advances the checkpoint.
// The checkpoint moves to "now" even when individual users failed; their
// unprocessed window is skipped on the next pass.
func (o *Orchestrator) RunTenantPass(ctx context.Context, tenantID string) (*model.SyncReport, error) {
	state, err := o.loadState(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	since := state.LastSyncTime

	o.log.Info().
		Str("tenant_id", tenantID).
		Time("since", since).
		Msg("tenant pass starting")

	userIDs, err := o.users.ListUsers(ctx)
	if err != nil {
		// Fatal: the checkpoint is not touched, the whole window stays
		// eligible for the next pass.
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	var (
		usersProcessed int
		interactions   int
		lastFailure    *string
	)

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		count, err := o.processUser(ctx, tenantID, userID, since)
		if err != nil {
			msg := fmt.Sprintf("user %s: %v", userID, err)
			lastFailure = &msg
			o.log.Warn().
				Str("tenant_id", tenantID).
				Str("user_id", userID).
				Err(err).
				Msg("user skipped after failure")
			continue
		}
		usersProcessed++
		interactions += count
	}

	now := o.now().UTC()
	state.LastSyncTime = now
	state.TotalInteractionsProcessed += int64(interactions)
	state.LastFailureMessage = lastFailure
	state.UpdatedAt = now
	if err := o.states.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("update checkpoint for tenant %s: %w", tenantID, err)
	}

	o.log.Info().
		Str("tenant_id", tenantID).
		Int("users_processed", usersProcessed).
		Int("interactions", interactions).
		Bool("had_failures", lastFailure != nil).
		Msg("tenant pass complete")

	return &model.SyncReport{
		Success:               true,
		TenantID:              tenantID,
		UsersProcessed:        usersProcessed,
		InteractionsProcessed: interactions,
		LastSyncTime:          now,
		ProcessedAt:           now,
		LastFailureMessage:    lastFailure,
	}, nil
}

// processUser fetches, assembles, screens, and persists one user's window.
// The returned count is the number of raw events consumed.
func (o *Orchestrator) processUser(ctx context.Context, tenantID, userID string, since time.Time) (int, error) {
	pager := o.source.InteractionsSince(userID, since)

	var events []model.RawInteractionEvent
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return 0, err
		}
		if page == nil {
			break
		}
		events = append(events, page...)
	}
	if len(events) == 0 {
		return 0, nil
	}

	for _, cand := range conversation.Assemble(events) {
		rec := &model.ConversationRecord{
			ID:           o.newID(),
			TenantID:     tenantID,
			UserID:       cand.UserID,
			SessionID:    cand.SessionID,
			PromptText:   cand.PromptText,
			ResponseText: cand.ResponseText,
			CreatedAt:    cand.CreatedAt,
			HasPii:       pii.Detect(cand.PromptText + "\n" + cand.ResponseText),
		}
		if err := o.writer.Write(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(events), nil
}

// loadState returns the tenant's checkpoint, creating a zero state on first
// run.
func (o *Orchestrator) loadState(ctx context.Context, tenantID string) (*model.TenantSyncState, error) {
	state, err := o.states.Get(ctx, tenantID)
	if errors.Is(err, model.ErrNotFound) {
		return &model.TenantSyncState{TenantID: tenantID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint for tenant %s: %w", tenantID, err)
	}
	return state, nil
}
