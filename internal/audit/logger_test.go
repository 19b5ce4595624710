package audit

import (
	"context"
	"errors"
	"testing"

	"juribank/backend/internal/audit/domain"
	"juribank/backend/internal/security"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	hasher := security.NewTestHasher()
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, hasher, ipExtractor)

	logger.LogEvent(context.Background(), "session-1", "track", "anonymous_session", `{"status_code":"OK"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.SessionID != "session-1" {
		t.Errorf("session_id = %q, want %q", entry.SessionID, "session-1")
	}
	if entry.Action != "track" || entry.Resource != "anonymous_session" {
		t.Errorf("action/resource = %q/%q", entry.Action, entry.Resource)
	}
	if entry.IPHash != hasher.HashIP("192.168.1.1") {
		t.Errorf("ip_hash = %q, want hash of the client address", entry.IPHash)
	}
	if entry.Metadata != `{"status_code":"OK"}` {
		t.Errorf("metadata = %q", entry.Metadata)
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_UnknownIPNotHashed(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, security.NewTestHasher(), func(context.Context) string { return "unknown" })

	logger.LogEvent(context.Background(), "", "create", "anonymous_session", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IPHash != "" {
		t.Errorf("ip_hash = %q, want empty", repo.entries[0].IPHash)
	}
}

func TestLogger_LogEvent_NilExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, security.NewTestHasher(), nil)

	logger.LogEvent(context.Background(), "session-1", "get", "anonymous_session", "")

	if len(repo.entries) != 1 || repo.entries[0].IPHash != "" {
		t.Errorf("entries = %+v", repo.entries)
	}
}

func TestLogger_LogEvent_RepoErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	logger := NewLogger(repo, nil, nil)

	// Should not panic
	logger.LogEvent(context.Background(), "session-1", "get", "anonymous_session", "")

	if len(repo.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(repo.entries))
	}
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil, nil)
	// Should not panic
	logger.LogEvent(context.Background(), "session-1", "get", "anonymous_session", "")
}
