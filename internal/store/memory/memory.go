// Package memory is an in-process transaction store for tests and demos.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]core.Transaction
	hub  *store.Hub
	now  func() time.Time
}

func New() *Store {
	return &Store{
		data: make(map[string][]core.Transaction),
		hub:  store.NewHub(),
		now:  time.Now,
	}
}

// Seed replaces owner's transactions without validation.
func (s *Store) Seed(owner string, txs []core.Transaction) {
	s.mu.Lock()
	s.data[owner] = slices.Clone(txs)
	snap := slices.Clone(s.data[owner])
	s.mu.Unlock()
	s.hub.Publish(owner, store.Event{Snapshot: snap})
}

func (s *Store) Subscribe(ctx context.Context, owner string) (<-chan store.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.Add(ctx, owner, store.Event{Snapshot: slices.Clone(s.data[owner])}), nil
}

func (s *Store) Create(_ context.Context, owner string, t core.Transaction) (string, error) {
	t, err := store.Prepare(t)
	if err != nil {
		return "", err
	}
	t.ID = ulid.Make().String()
	t.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.data[owner] = append(s.data[owner], t)
	snap := slices.Clone(s.data[owner])
	s.hub.Publish(owner, store.Event{Snapshot: snap})
	s.mu.Unlock()
	return t.ID, nil
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.data[owner]
	i := slices.IndexFunc(txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	s.data[owner] = slices.Delete(slices.Clone(txs), i, i+1)
	s.hub.Publish(owner, store.Event{Snapshot: slices.Clone(s.data[owner])})
	return nil
}
