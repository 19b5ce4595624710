package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"juribank/backend/internal/telemetry/domain"
)

const defaultListLimit = 100

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a moderation event repository backed by the moderation_events table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save persists the event. It sets e.ID on success.
func (r *PostgresRepository) Save(ctx context.Context, e *domain.Event) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO moderation_events (event_type, source, session_id, ip_hash, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		e.EventType, e.Source, nullString(e.SessionID), nullString(e.IPHash), eventMetadata(e.Metadata), e.CreatedAt,
	).Scan(&e.ID)
}

// Emit saves the event so the repository can sit in an emitter fan-out.
func (r *PostgresRepository) Emit(ctx context.Context, e *domain.Event) error {
	if e == nil {
		return nil
	}
	return r.Save(ctx, e)
}

// ListBySession returns the newest events for sessionID, at most limit (default 100).
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit int32) ([]*domain.Event, error) {
	return r.list(ctx, `WHERE session_id = $1`, sessionID, limit)
}

// ListByType returns the newest events of eventType, at most limit (default 100).
func (r *PostgresRepository) ListByType(ctx context.Context, eventType string, limit int32) ([]*domain.Event, error) {
	return r.list(ctx, `WHERE event_type = $1`, eventType, limit)
}

func (r *PostgresRepository) list(ctx context.Context, where, arg string, limit int32) ([]*domain.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, event_type, source, session_id, ip_hash, metadata, created_at
FROM moderation_events `+where+`
ORDER BY created_at DESC, id DESC
LIMIT $2`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Event
	for rows.Next() {
		var (
			e                 domain.Event
			sessionID, ipHash sql.NullString
			meta              []byte
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.Source, &sessionID, &ipHash, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID = sessionID.String
		e.IPHash = ipHash.String
		if len(meta) > 0 {
			e.Metadata = json.RawMessage(meta)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func eventMetadata(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(b)
}
