package repository

import (
	"context"
	"time"

	"juribank/backend/internal/session/domain"
)

// Repository defines persistence for anonymous sessions and their IP-hash index.
// Implementations keep the index consistent with the session table on every write.
type Repository interface {
	// GetByID returns a copy of the session for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Save inserts or replaces the session and indexes it under its IP hash.
	Save(ctx context.Context, s *domain.Session) error
	// Delete removes the session and its index entry. It reports whether a session was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// CountByIPHash returns the number of sessions indexed under ipHash that are not expired at now.
	CountByIPHash(ctx context.Context, ipHash string, now time.Time) (int, error)
	// DeleteExpired removes every session with ExpiresAt before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	// PruneIPIndex drops index entries that no longer reference a stored session and
	// returns how many were dropped.
	PruneIPIndex(ctx context.Context) (int, error)
	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}
