package repository

import (
	"context"
	"sync"

	"juribank/backend/internal/audit/domain"
)

// defaultListLimit applies when ListBySession is called with a non-positive limit.
const defaultListLimit = 100

// MemoryRepository keeps audit logs in process. Entries are lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

// NewMemoryRepository returns an empty in-memory audit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends a copy of a.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}

// ListBySession returns copies of the entries for sessionID, newest first.
func (r *MemoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.AuditLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].SessionID != sessionID {
			continue
		}
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}
