package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"juribank/backend/internal/telemetry/domain"
)

// EventEmitter emits telemetry events (e.g. to Kafka or OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// NewEvent builds an event stamped with the current UTC time. metadata may be nil; if it cannot be
// encoded it is dropped.
func NewEvent(eventType, source, sessionID, ipHash string, metadata map[string]any) *domain.Event {
	e := &domain.Event{
		EventType: eventType,
		Source:    source,
		SessionID: sessionID,
		IPHash:    ipHash,
		CreatedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			e.Metadata = b
		}
	}
	return e
}

// Multi fans one event out to several emitters. Nil emitters are skipped.
type Multi []EventEmitter

// NewMulti returns a Multi of the non-nil emitters.
func NewMulti(emitters ...EventEmitter) Multi {
	m := make(Multi, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			m = append(m, e)
		}
	}
	return m
}

// Emit sends event to every emitter and joins their errors.
func (m Multi) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
