package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"juribank/backend/internal/audit/domain"
)

func TestMemoryRepository_ListBySession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sid := "s1"
		if i%2 == 1 {
			sid = "s2"
		}
		if err := repo.Create(ctx, &domain.AuditLog{
			ID:        fmt.Sprintf("a%d", i),
			SessionID: sid,
			Action:    "track",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := repo.ListBySession(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "a4" || list[2].ID != "a0" {
		t.Errorf("order = %s..%s, want newest first", list[0].ID, list[2].ID)
	}

	list, _ = repo.ListBySession(ctx, "s1", 2)
	if len(list) != 2 {
		t.Errorf("limited len = %d, want 2", len(list))
	}
	list, _ = repo.ListBySession(ctx, "missing", 10)
	if len(list) != 0 {
		t.Errorf("unknown session len = %d, want 0", len(list))
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	entry := &domain.AuditLog{ID: "a1", SessionID: "s1", Action: "get"}
	_ = repo.Create(ctx, entry)
	entry.Action = "changed"

	list, _ := repo.ListBySession(ctx, "s1", 1)
	if list[0].Action != "get" {
		t.Errorf("stored entry changed through caller pointer: %q", list[0].Action)
	}
	list[0].Action = "changed"
	list, _ = repo.ListBySession(ctx, "s1", 1)
	if list[0].Action != "get" {
		t.Errorf("stored entry changed through returned pointer: %q", list[0].Action)
	}
}
