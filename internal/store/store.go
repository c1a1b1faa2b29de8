// Package store defines the document-store persistence surface.
package store

import (
	"context"
	"time"

	"github.com/vaultshq/vaults-governance/internal/model"
)

// Store exposes persistence operations required by the ingestion pipeline.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Conversations() Conversations
	SyncStates() SyncStates
}

// Conversations persists ConversationRecord documents keyed by
// (tenantId, record id); Upsert is idempotent by that key.
type Conversations interface {
	Upsert(ctx context.Context, rec *model.ConversationRecord) error
	Get(ctx context.Context, tenantID, id string) (*model.ConversationRecord, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*model.ConversationRecord, error)
	MarkExported(ctx context.Context, tenantID, id string, at time.Time) error
}

// SyncStates reads and writes the per-tenant checkpoint record.
type SyncStates interface {
	Get(ctx context.Context, tenantID string) (*model.TenantSyncState, error)
	Upsert(ctx context.Context, st *model.TenantSyncState) error
}
