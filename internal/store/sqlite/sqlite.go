// Package sqlite is the local/dev document store adapter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/store"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS conversations (
    conversation_id TEXT NOT NULL,
    tenant_id       TEXT NOT NULL,
    user_id         TEXT NOT NULL,
    session_id      TEXT NOT NULL,
    prompt_text     TEXT NOT NULL,
    response_text   TEXT NOT NULL,
    created_at      TIMESTAMP NOT NULL,
    has_pii         BOOLEAN NOT NULL DEFAULT FALSE,
    is_exported     BOOLEAN NOT NULL DEFAULT FALSE,
    exported_at     TIMESTAMP,
    PRIMARY KEY (tenant_id, conversation_id)
);

CREATE TABLE IF NOT EXISTS tenant_sync_states (
    tenant_id                    TEXT PRIMARY KEY,
    last_sync_time               TIMESTAMP NOT NULL,
    total_interactions_processed INTEGER NOT NULL DEFAULT 0,
    last_failure_message         TEXT,
    updated_at                   TIMESTAMP NOT NULL
);
`

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode, and applies the schema. Use ":memory:" for tests.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *liteStore) SyncStates() store.SyncStates       { return &syncStates{db: s.db} }

// HealthPing implements health probing for the SQLite-backed store.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (c *conversations) Upsert(ctx context.Context, rec *model.ConversationRecord) error {
	var exportedAt interface{}
	if rec.ExportedAt != nil {
		exportedAt = rec.ExportedAt.UTC()
	}
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO conversations (
            conversation_id, tenant_id, user_id, session_id,
            prompt_text, response_text, created_at, has_pii, is_exported, exported_at
        ) VALUES (?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT (tenant_id, conversation_id) DO UPDATE SET
            user_id = excluded.user_id,
            session_id = excluded.session_id,
            prompt_text = excluded.prompt_text,
            response_text = excluded.response_text,
            created_at = excluded.created_at,
            has_pii = excluded.has_pii,
            is_exported = excluded.is_exported,
            exported_at = excluded.exported_at
    `, rec.ID, rec.TenantID, rec.UserID, rec.SessionID,
		rec.PromptText, rec.ResponseText, rec.CreatedAt.UTC(), rec.HasPii, rec.IsExported, exportedAt)
	return err
}

func (c *conversations) Get(ctx context.Context, tenantID, id string) (*model.ConversationRecord, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT conversation_id, tenant_id, user_id, session_id,
               prompt_text, response_text, created_at, has_pii, is_exported, exported_at
        FROM conversations WHERE tenant_id=? AND conversation_id=?
    `, tenantID, id)
	return scanConversation(row)
}

func (c *conversations) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*model.ConversationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.db.QueryContext(ctx, `
        SELECT conversation_id, tenant_id, user_id, session_id,
               prompt_text, response_text, created_at, has_pii, is_exported, exported_at
        FROM conversations WHERE tenant_id=?
        ORDER BY created_at DESC LIMIT ?
    `, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.ConversationRecord
	for rows.Next() {
		rec, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *conversations) MarkExported(ctx context.Context, tenantID, id string, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `
        UPDATE conversations SET is_exported=TRUE, exported_at=?
        WHERE tenant_id=? AND conversation_id=?
    `, at.UTC(), tenantID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanConversation(row rowScanner) (*model.ConversationRecord, error) {
	var rec model.ConversationRecord
	var exportedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.SessionID,
		&rec.PromptText, &rec.ResponseText, &rec.CreatedAt, &rec.HasPii, &rec.IsExported, &exportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exportedAt.Valid {
		t := exportedAt.Time
		rec.ExportedAt = &t
	}
	return &rec, nil
}

// --- SyncStates ---

type syncStates struct{ db *sql.DB }

func (s *syncStates) Get(ctx context.Context, tenantID string) (*model.TenantSyncState, error) {
	var st model.TenantSyncState
	var failure sql.NullString
	row := s.db.QueryRowContext(ctx, `
        SELECT tenant_id, last_sync_time, total_interactions_processed, last_failure_message, updated_at
        FROM tenant_sync_states WHERE tenant_id=?
    `, tenantID)
	err := row.Scan(&st.TenantID, &st.LastSyncTime, &st.TotalInteractionsProcessed, &failure, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if failure.Valid {
		st.LastFailureMessage = &failure.String
	}
	return &st, nil
}

func (s *syncStates) Upsert(ctx context.Context, st *model.TenantSyncState) error {
	var failure interface{}
	if st.LastFailureMessage != nil {
		failure = *st.LastFailureMessage
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO tenant_sync_states (
            tenant_id, last_sync_time, total_interactions_processed, last_failure_message, updated_at
        ) VALUES (?,?,?,?,?)
        ON CONFLICT (tenant_id) DO UPDATE SET
            last_sync_time = excluded.last_sync_time,
            total_interactions_processed = excluded.total_interactions_processed,
            last_failure_message = excluded.last_failure_message,
            updated_at = excluded.updated_at
    `, st.TenantID, st.LastSyncTime.UTC(), st.TotalInteractionsProcessed, failure, st.UpdatedAt.UTC())
	return err
}
