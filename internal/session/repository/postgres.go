package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"juribank/backend/internal/session/domain"
)

// PostgresRepository persists sessions in the anon_sessions table. The ip_hash column is
// the secondary index, so index and table cannot drift apart.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, ip_hash, user_agent_hash, fingerprint, created_at, last_active, expires_at,
	activity, suspicion_score, flags, preferences, verified`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM anon_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Save upserts the session row.
func (r *PostgresRepository) Save(ctx context.Context, s *domain.Session) error {
	activity, err := json.Marshal(s.Activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	flags := s.Flags
	if flags == nil {
		flags = []string{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	prefs, err := json.Marshal(s.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO anon_sessions (`+sessionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	ip_hash = EXCLUDED.ip_hash,
	user_agent_hash = EXCLUDED.user_agent_hash,
	fingerprint = EXCLUDED.fingerprint,
	last_active = EXCLUDED.last_active,
	expires_at = EXCLUDED.expires_at,
	activity = EXCLUDED.activity,
	suspicion_score = EXCLUDED.suspicion_score,
	flags = EXCLUDED.flags,
	preferences = EXCLUDED.preferences,
	verified = EXCLUDED.verified`,
		s.ID, s.IPHash, s.UserAgentHash, s.Fingerprint, s.CreatedAt, s.LastActive, s.ExpiresAt,
		activity, s.SuspicionScore, flagsJSON, prefs, s.Verified,
	)
	return err
}

// Delete removes the session row for id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM anon_sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByIPHash returns the number of live sessions stored for ipHash.
func (r *PostgresRepository) CountByIPHash(ctx context.Context, ipHash string, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM anon_sessions WHERE ip_hash = $1 AND expires_at >= $2`, ipHash, now).Scan(&n)
	return n, err
}

// DeleteExpired removes sessions with expires_at before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM anon_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// PruneIPIndex is a no-op: the index is a column of the session row.
func (r *PostgresRepository) PruneIPIndex(ctx context.Context) (int, error) {
	return 0, nil
}

// Count returns the number of stored sessions.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM anon_sessions`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s                      domain.Session
		activity, flags, prefs []byte
	)
	err := row.Scan(&s.ID, &s.IPHash, &s.UserAgentHash, &s.Fingerprint, &s.CreatedAt, &s.LastActive,
		&s.ExpiresAt, &activity, &s.SuspicionScore, &flags, &prefs, &s.Verified)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(activity, &s.Activity); err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	if err := json.Unmarshal(flags, &s.Flags); err != nil {
		return nil, fmt.Errorf("unmarshal flags: %w", err)
	}
	if len(s.Flags) == 0 {
		s.Flags = nil
	}
	if err := json.Unmarshal(prefs, &s.Preferences); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return &s, nil
}
