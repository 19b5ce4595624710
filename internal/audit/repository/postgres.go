package repository

import (
	"context"
	"database/sql"

	"juribank/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := a.Metadata
	if meta == "" {
		meta = "{}"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, session_id, action, resource, ip_hash, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, nullString(a.SessionID), a.Action, a.Resource, nullString(a.IPHash), meta, a.CreatedAt,
	)
	return err
}

// ListBySession returns audit logs for the given session, newest first.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, action, resource, ip_hash, metadata, created_at
		FROM audit_logs
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a      domain.AuditLog
			sid    sql.NullString
			ipHash sql.NullString
		)
		if err := rows.Scan(&a.ID, &sid, &a.Action, &a.Resource, &ipHash, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.SessionID = sid.String
		a.IPHash = ipHash.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
