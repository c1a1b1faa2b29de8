package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vaultshq/vaults-governance/internal/model"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *pgStore) SyncStates() store.SyncStates       { return &syncStates{db: s.db} }

// HealthPing implements health probing for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check. Schema setup is handled by
// migrations outside the process.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (c *conversations) Upsert(ctx context.Context, rec *model.ConversationRecord) error {
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO conversations (
            conversation_id, tenant_id, user_id, session_id,
            prompt_text, response_text, created_at, has_pii, is_exported, exported_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (tenant_id, conversation_id) DO UPDATE SET
            user_id = EXCLUDED.user_id,
            session_id = EXCLUDED.session_id,
            prompt_text = EXCLUDED.prompt_text,
            response_text = EXCLUDED.response_text,
            created_at = EXCLUDED.created_at,
            has_pii = EXCLUDED.has_pii,
            is_exported = EXCLUDED.is_exported,
            exported_at = EXCLUDED.exported_at
    `, rec.ID, rec.TenantID, rec.UserID, rec.SessionID,
		rec.PromptText, rec.ResponseText, rec.CreatedAt.UTC(), rec.HasPii, rec.IsExported, rec.ExportedAt)
	return err
}

func (c *conversations) Get(ctx context.Context, tenantID, id string) (*model.ConversationRecord, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT conversation_id, tenant_id, user_id, session_id,
               prompt_text, response_text, created_at, has_pii, is_exported, exported_at
        FROM conversations WHERE tenant_id=$1 AND conversation_id=$2
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
        FROM conversations WHERE tenant_id=$1
        ORDER BY created_at DESC LIMIT $2
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
        UPDATE conversations SET is_exported=TRUE, exported_at=$3
        WHERE tenant_id=$1 AND conversation_id=$2
    `, tenantID, id, at.UTC())
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
	err := row.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.SessionID,
		&rec.PromptText, &rec.ResponseText, &rec.CreatedAt, &rec.HasPii, &rec.IsExported, &rec.ExportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// --- SyncStates ---

type syncStates struct{ db *sql.DB }

func (s *syncStates) Get(ctx context.Context, tenantID string) (*model.TenantSyncState, error) {
	var st model.TenantSyncState
	row := s.db.QueryRowContext(ctx, `
        SELECT tenant_id, last_sync_time, total_interactions_processed, last_failure_message, updated_at
        FROM tenant_sync_states WHERE tenant_id=$1
    `, tenantID)
	err := row.Scan(&st.TenantID, &st.LastSyncTime, &st.TotalInteractionsProcessed, &st.LastFailureMessage, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *syncStates) Upsert(ctx context.Context, st *model.TenantSyncState) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO tenant_sync_states (
            tenant_id, last_sync_time, total_interactions_processed, last_failure_message, updated_at
        ) VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (tenant_id) DO UPDATE SET
            last_sync_time = EXCLUDED.last_sync_time,
            total_interactions_processed = EXCLUDED.total_interactions_processed,
            last_failure_message = EXCLUDED.last_failure_message,
            updated_at = EXCLUDED.updated_at
    `, st.TenantID, st.LastSyncTime.UTC(), st.TotalInteractionsProcessed, st.LastFailureMessage, st.UpdatedAt.UTC())
	return err
}
