package repository

import (
	"context"
	"sync"
	"time"

	"juribank/backend/internal/session/domain"
)

// MemoryRepository keeps sessions in process memory. All state is lost on restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	byIP     map[string]map[string]struct{}
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*domain.Session),
		byIP:     make(map[string]map[string]struct{}),
	}
}

// GetByID returns a copy of the session for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// Save stores a copy of s. If the session moved to another IP hash the old index entry is removed.
func (r *MemoryRepository) Save(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.sessions[s.ID]; ok && prev.IPHash != s.IPHash {
		r.unindex(prev.IPHash, prev.ID)
	}
	r.sessions[s.ID] = s.Clone()
	bucket, ok := r.byIP[s.IPHash]
	if !ok {
		bucket = make(map[string]struct{})
		r.byIP[s.IPHash] = bucket
	}
	bucket[s.ID] = struct{}{}
	return nil
}

// Delete removes the session for id and its index entry.
func (r *MemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id), nil
}

// CountByIPHash returns how many live sessions are indexed under ipHash.
func (r *MemoryRepository) CountByIPHash(ctx context.Context, ipHash string, now time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for id := range r.byIP[ipHash] {
		if s, ok := r.sessions[id]; ok && !s.Expired(now) {
			n++
		}
	}
	return n, nil
}

// DeleteExpired removes sessions whose expiry is before now.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			r.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

// PruneIPIndex drops index entries for missing sessions and removes empty buckets.
func (r *MemoryRepository) PruneIPIndex(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for ipHash, bucket := range r.byIP {
		for id := range bucket {
			if _, ok := r.sessions[id]; !ok {
				delete(bucket, id)
				n++
			}
		}
		if len(bucket) == 0 {
			delete(r.byIP, ipHash)
		}
	}
	return n, nil
}

// Count returns the number of stored sessions.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

func (r *MemoryRepository) deleteLocked(id string) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	delete(r.sessions, id)
	r.unindex(s.IPHash, id)
	return true
}

func (r *MemoryRepository) unindex(ipHash, id string) {
	bucket, ok := r.byIP[ipHash]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(r.byIP, ipHash)
	}
}
