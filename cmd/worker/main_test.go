package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"juribank/backend/internal/telemetry/domain"
	"juribank/backend/internal/telemetry/loki"
)

type memoryEvents struct {
	saved []*domain.Event
}

func (m *memoryEvents) Save(ctx context.Context, e *domain.Event) error {
	e.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, e)
	return nil
}

func (m *memoryEvents) ListBySession(ctx context.Context, sessionID string, limit int32) ([]*domain.Event, error) {
	return nil, nil
}

func (m *memoryEvents) ListByType(ctx context.Context, eventType string, limit int32) ([]*domain.Event, error) {
	return nil, nil
}

func TestHandleMessage_PushesAndStores(t *testing.T) {
	var pushed []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw, _ := json.Marshal(domain.Event{
		EventType: domain.EventIPBanned,
		Source:    "anonsession.registry",
		SessionID: "s-1",
		IPHash:    "abc",
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	lokiClient, err := loki.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	events := &memoryEvents{}
	handleMessage(context.Background(), lokiClient, events, raw)

	if len(pushed) == 0 {
		t.Error("nothing pushed to loki")
	}
	if len(events.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(events.saved))
	}
	if ev := events.saved[0]; ev.EventType != domain.EventIPBanned || ev.SessionID != "s-1" {
		t.Errorf("saved = %+v", ev)
	}
}

func TestHandleMessage_BadJSONNotStored(t *testing.T) {
	events := &memoryEvents{}
	handleMessage(context.Background(), nil, events, []byte("{not json"))
	if len(events.saved) != 0 {
		t.Errorf("saved = %d, want 0", len(events.saved))
	}
}

func TestHandleMessage_FillsMissingTimestamp(t *testing.T) {
	events := &memoryEvents{}
	handleMessage(context.Background(), nil, events, []byte(`{"eventType":"session_created","source":"test"}`))
	if len(events.saved) != 1 || events.saved[0].CreatedAt.IsZero() {
		t.Errorf("saved = %+v", events.saved)
	}
}
