package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaultshq/vaults-governance/internal/blob"
	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// ConversationWriter persists one conversation record.
type ConversationWriter interface {
	Write(ctx context.Context, rec *model.ConversationRecord) error
}

// DualWriter upserts the record into the document store, archives it to the
// blob store, then flips the exported marker in a second write. A failure at
// any step leaves IsExported false so the record is safely reprocessed on a
// later run; both writes are keyed by the same stable id, so reprocessing
// cannot duplicate.
type DualWriter struct {
	docs  store.Conversations
	blobs blob.Store
	now   func() time.Time
}

// NewDualWriter wires the two stores together.
func NewDualWriter(docs store.Conversations, blobs blob.Store) *DualWriter {
	return &DualWriter{docs: docs, blobs: blobs, now: time.Now}
}

// Write runs the two-phase persist for one record.
func (w *DualWriter) Write(ctx context.Context, rec *model.ConversationRecord) error {
	rec.IsExported = false
	rec.ExportedAt = nil
	if err := w.docs.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert conversation %s: %w", rec.ID, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal conversation %s: %w", rec.ID, err)
	}
	if err := w.blobs.Put(ctx, ArchivePath(rec), data); err != nil {
		return fmt.Errorf("archive conversation %s: %w", rec.ID, err)
	}

	exportedAt := w.now().UTC()
	if err := w.docs.MarkExported(ctx, rec.TenantID, rec.ID, exportedAt); err != nil {
		return fmt.Errorf("mark conversation %s exported: %w", rec.ID, err)
	}
	rec.IsExported = true
	rec.ExportedAt = &exportedAt
	return nil
}

// ArchivePath derives the blob path for a record: tenant, creation date, id.
func ArchivePath(rec *model.ConversationRecord) string {
	return fmt.Sprintf("tenants/%s/conversations/%s/%s.json",
		rec.TenantID, rec.CreatedAt.UTC().Format("2006/01/02"), rec.ID)
}
