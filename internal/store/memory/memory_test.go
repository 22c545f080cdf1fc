package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func next(t *testing.T, ch <-chan store.Event) store.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return store.Event{}
	}
}

func TestCreateDeletePushesSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New()
	ch, err := s.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ev := next(t, ch); len(ev.Snapshot) != 0 {
		t.Fatalf("initial snapshot should be empty")
	}

	id, err := s.Create(ctx, "u1", core.Transaction{Amount: core.Money{Cents: 500}, Date: core.NewDate(2025, 1, 1)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ev := next(t, ch)
	if len(ev.Snapshot) != 1 || ev.Snapshot[0].ID != id || ev.Snapshot[0].Category != core.DefaultCategory {
		t.Fatalf("unexpected snapshot %+v", ev.Snapshot)
	}

	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ev := next(t, ch); len(ev.Snapshot) != 0 {
		t.Fatalf("snapshot after delete = %+v", ev.Snapshot)
	}
	if err := s.Delete(ctx, "u1", id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Create(context.Background(), "u1", core.Transaction{Amount: core.Money{Cents: -1}, Date: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed("a", []core.Transaction{{ID: "1"}})
	ch, _ := s.Subscribe(ctx, "b")
	if ev := next(t, ch); len(ev.Snapshot) != 0 {
		t.Fatalf("owner b sees owner a's data")
	}
}
