package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"juribank/backend/internal/audit/domain"
	auditrepo "juribank/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// IPHasher derives the stored form of a client address.
type IPHasher interface {
	HashIP(ip string) string
}

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, sessionID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository. Client addresses are hashed
// before they are stored.
type Logger struct {
	repo        auditrepo.Repository
	hasher      IPHasher
	ipExtractor IPExtractor
	nowF        func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo. ipExtractor may be nil; then no
// address is recorded.
func NewLogger(repo auditrepo.Repository, hasher IPHasher, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, hasher: hasher, ipExtractor: ipExtractor, nowF: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, sessionID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	var ipHash string
	if l.ipExtractor != nil && l.hasher != nil {
		if ip := l.ipExtractor(ctx); ip != "" && ip != "unknown" {
			ipHash = l.hasher.HashIP(ip)
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Action:    action,
		Resource:  resource,
		IPHash:    ipHash,
		Metadata:  metadata,
		CreatedAt: l.nowF().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
