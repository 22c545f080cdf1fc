package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func fixedNow() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }

func TestCreatePersistsAndEchoes(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := Open(dir, "my/app", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ch, _ := s.Subscribe(ctx, "ignored")
	if ev := <-ch; len(ev.Snapshot) != 0 {
		t.Fatalf("fresh store should be empty")
	}

	id, err := s.Create(ctx, "ignored", core.Transaction{Amount: core.Money{Cents: 990}, Type: core.Income, Date: core.NewDate(2025, 5, 19)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !regexp.MustCompile(`^local_\d+_[0-9a-z]{6}$`).MatchString(id) {
		t.Fatalf("unexpected id %q", id)
	}
	select {
	case ev := <-ch:
		if len(ev.Snapshot) != 1 || ev.Snapshot[0].ID != id {
			t.Fatalf("echo = %+v", ev.Snapshot)
		}
	case <-time.After(time.Second):
		t.Fatalf("write was not echoed")
	}

	reopened, err := Open(dir, "my/app", fixedNow)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, _ := reopened.Read()
	if len(got) != 1 || got[0].Amount.Cents != 990 || got[0].Type != core.Income {
		t.Fatalf("persisted = %+v", got)
	}
	if reopened.Key() != "fintrack:my-app:expenses" {
		t.Fatalf("key = %q", reopened.Key())
	}

	if err := reopened.Delete(ctx, "", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := reopened.Delete(ctx, "", id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadCoercesMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	raw := `{"fintrack:app:expenses":[{"id":"x","amount":"abc"},{"id":"y","amount":"12.5","type":"income","date":"2025-01-02"}],"other:key":[]}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir, "app", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got[0].Amount.Cents != 0 || got[0].Category != core.DefaultCategory || got[0].Date.String() != "2025-05-20" {
		t.Fatalf("first record not coerced: %+v", got[0])
	}
	if got[1].Amount.Cents != 1250 || got[1].Type != core.Income {
		t.Fatalf("second record = %+v", got[1])
	}

	if err := s.Write(got[1:]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if !regexp.MustCompile(`"other:key"`).Match(data) {
		t.Fatalf("write dropped another key:\n%s", data)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir, "app", fixedNow); err == nil {
		t.Fatalf("expected decode error")
	}
}
