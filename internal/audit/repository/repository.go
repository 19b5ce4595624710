package repository

import (
	"context"

	"juribank/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListBySession returns the newest entries for sessionID first, at most limit of them.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error)
}
