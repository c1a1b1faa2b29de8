// Package storetest holds a compliance suite run against every store.Store
// adapter, so the postgres and sqlite implementations are held to the same
// contract.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// Run exercises the conversation and sync-state contracts against a
// store.Store implementation. makeStore must return a usable store; unique
// tenant ids keep runs isolated on shared databases.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	tenantID := "t-" + uuid.New().String()

	// Conversations: upsert, read back
	rec := &model.ConversationRecord{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		UserID:       "u1",
		SessionID:    "s1",
		PromptText:   "what changed in the contract?",
		ResponseText: "clause 4 was amended",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		HasPii:       true,
	}
	if err := s.Conversations().Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Conversations().Get(ctx, tenantID, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PromptText != rec.PromptText || !got.HasPii || got.IsExported {
		t.Fatalf("Get roundtrip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("Get createdAt: want %v got %v", rec.CreatedAt, got.CreatedAt)
	}
	if got.ExportedAt != nil {
		t.Fatalf("Get exportedAt: want nil got %v", got.ExportedAt)
	}

	// Upsert by the same key replaces, never duplicates
	rec.ResponseText = "clauses 4 and 7 were amended"
	if err := s.Conversations().Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}
	lst, err := s.Conversations().ListByTenant(ctx, tenantID, 10)
	if err != nil || len(lst) != 1 {
		t.Fatalf("ListByTenant after replace: n=%d err=%v", len(lst), err)
	}
	if lst[0].ResponseText != rec.ResponseText {
		t.Fatalf("ListByTenant stale row: %+v", lst[0])
	}

	// ListByTenant orders newest first and honors the limit
	rec2 := &model.ConversationRecord{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		UserID:       "u1",
		SessionID:    "s2",
		PromptText:   "second",
		ResponseText: "second answer",
		CreatedAt:    rec.CreatedAt.Add(time.Hour),
	}
	if err := s.Conversations().Upsert(ctx, rec2); err != nil {
		t.Fatalf("Upsert rec2: %v", err)
	}
	lst, err = s.Conversations().ListByTenant(ctx, tenantID, 10)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListByTenant: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != rec2.ID {
		t.Fatalf("ListByTenant order: want %s first, got %s", rec2.ID, lst[0].ID)
	}
	if lst, err = s.Conversations().ListByTenant(ctx, tenantID, 1); err != nil || len(lst) != 1 {
		t.Fatalf("ListByTenant limit: n=%d err=%v", len(lst), err)
	}

	// MarkExported flips the marker and stamps the time
	exportedAt := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	if err := s.Conversations().MarkExported(ctx, tenantID, rec.ID, exportedAt); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	got, err = s.Conversations().Get(ctx, tenantID, rec.ID)
	if err != nil || !got.IsExported || got.ExportedAt == nil {
		t.Fatalf("Get after MarkExported: got=%+v err=%v", got, err)
	}
	if !got.ExportedAt.Equal(exportedAt) {
		t.Fatalf("MarkExported timestamp: want %v got %v", exportedAt, got.ExportedAt)
	}

	// Missing rows map to model.ErrNotFound
	if _, err := s.Conversations().Get(ctx, tenantID, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
	if err := s.Conversations().MarkExported(ctx, tenantID, "missing", exportedAt); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("MarkExported missing: want ErrNotFound, got %v", err)
	}

	// Sync states: absent, written, replaced
	if _, err := s.SyncStates().Get(ctx, tenantID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("SyncStates Get absent: want ErrNotFound, got %v", err)
	}
	failure := "user u2: fetch interactions: retries exhausted"
	st := &model.TenantSyncState{
		TenantID:                   tenantID,
		LastSyncTime:               time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TotalInteractionsProcessed: 9,
		LastFailureMessage:         &failure,
		UpdatedAt:                  time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
	}
	if err := s.SyncStates().Upsert(ctx, st); err != nil {
		t.Fatalf("SyncStates Upsert: %v", err)
	}
	gotSt, err := s.SyncStates().Get(ctx, tenantID)
	if err != nil {
		t.Fatalf("SyncStates Get: %v", err)
	}
	if !gotSt.LastSyncTime.Equal(st.LastSyncTime) || gotSt.TotalInteractionsProcessed != 9 {
		t.Fatalf("SyncStates roundtrip: %+v", gotSt)
	}
	if gotSt.LastFailureMessage == nil || *gotSt.LastFailureMessage != failure {
		t.Fatalf("SyncStates failure message: %+v", gotSt.LastFailureMessage)
	}

	st.LastFailureMessage = nil
	st.TotalInteractionsProcessed = 14
	if err := s.SyncStates().Upsert(ctx, st); err != nil {
		t.Fatalf("SyncStates Upsert replace: %v", err)
	}
	gotSt, err = s.SyncStates().Get(ctx, tenantID)
	if err != nil || gotSt.TotalInteractionsProcessed != 14 {
		t.Fatalf("SyncStates after replace: got=%+v err=%v", gotSt, err)
	}
	if gotSt.LastFailureMessage != nil {
		t.Fatalf("SyncStates failure not cleared: %v", *gotSt.LastFailureMessage)
	}
}
