package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestSanitizeAppID(t *testing.T) {
	cases := map[string]string{
		"default-app-id": "default-app-id",
		"team/app":       "team-app",
		"my app.v2":      "my_app_v2",
		"a/b c":          "a-b_c",
	}
	for in, want := range cases {
		if got := SanitizeAppID(in); got != want {
			t.Fatalf("SanitizeAppID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNames(t *testing.T) {
	if got := Namespace("team/app", "u1"); got != "artifacts/team-app/users/u1/expenses" {
		t.Fatalf("Namespace = %q", got)
	}
	if got := LocalOwner("x y"); got != "local_x_y" {
		t.Fatalf("LocalOwner = %q", got)
	}
	if got := LocalKey("app"); got != "fintrack:app:expenses" {
		t.Fatalf("LocalKey = %q", got)
	}
}

func TestPrepare(t *testing.T) {
	got, err := Prepare(core.Transaction{Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1)})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got.Type != core.Expense || got.Category != core.DefaultCategory {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if _, err := Prepare(core.Transaction{Date: core.NewDate(2025, 1, 1)}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSendKeepsNewest(t *testing.T) {
	ch := make(chan Event, 1)
	Send(ch, Event{Err: errors.New("old")})
	Send(ch, Event{Err: errors.New("new")})
	if ev := <-ch; ev.Err.Error() != "new" {
		t.Fatalf("got %v, want newest event", ev.Err)
	}
}

func TestHubPublishAndUnsubscribe(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Add(ctx, "o1", Event{})
	other := h.Add(context.Background(), "o2", Event{})
	<-ch
	<-other

	snap := []core.Transaction{{ID: "a"}}
	h.Publish("o1", Event{Snapshot: snap})
	select {
	case ev := <-ch:
		if len(ev.Snapshot) != 1 || ev.Snapshot[0].ID != "a" {
			t.Fatalf("unexpected snapshot %+v", ev.Snapshot)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event delivered")
	}
	select {
	case ev := <-other:
		t.Fatalf("event leaked to another owner: %+v", ev)
	default:
	}

	cancel()
	for range ch {
	}
	if h.Subscribers("o1") != 0 {
		t.Fatalf("subscriber not removed")
	}
	if n := h.Subscribers("o2"); n != 1 {
		t.Fatalf("o2 subscribers = %d", n)
	}
}
