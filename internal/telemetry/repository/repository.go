package repository

import (
	"context"

	"juribank/backend/internal/telemetry/domain"
)

// Repository defines persistence for moderation events.
type Repository interface {
	Save(ctx context.Context, e *domain.Event) error
	ListBySession(ctx context.Context, sessionID string, limit int32) ([]*domain.Event, error)
	ListByType(ctx context.Context, eventType string, limit int32) ([]*domain.Event, error)
}
