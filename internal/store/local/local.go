// Package local keeps transactions in a key-value file on disk. It backs the
// degraded mode used when the remote store cannot be reached: records are
// read once when the store is opened and there is no push from other
// processes.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileName is the key-value file created inside the data directory.
const FileName = "fintrack-local.json"

// Store holds the records of a single app under one key; the owner passed
// to its methods is ignored.
type Store struct {
	mu   sync.Mutex
	path string
	key  string
	txs  []core.Transaction
	hub  *store.Hub
	now  func() time.Time
}

// Open loads the records stored under the app's key in dir.
func Open(dir, appID string, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local data directory: %w", err)
	}
	s := &Store{
		path: filepath.Join(dir, FileName),
		key:  store.LocalKey(appID),
		hub:  store.NewHub(),
		now:  now,
	}
	txs, err := s.Read()
	if err != nil {
		return nil, err
	}
	s.txs = txs
	return s, nil
}

func (s *Store) Key() string { return s.key }

// Read returns the coerced records currently on disk.
func (s *Store) Read() ([]core.Transaction, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	today := core.DateOf(s.now())
	docs := all[s.key]
	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.Coerce(d, today))
	}
	return out, nil
}

// Write replaces the records stored under the key.
func (s *Store) Write(txs []core.Transaction) error {
	all, err := s.load()
	if err != nil {
		return err
	}
	docs := make([]core.Document, len(txs))
	for i, t := range txs {
		docs[i] = core.ToDocument(t)
	}
	all[s.key] = docs

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local data: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write local data: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace local data: %w", err)
	}
	return nil
}

func (s *Store) load() (map[string][]core.Document, error) {
	all := make(map[string][]core.Document)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local data: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode local data: %w", err)
	}
	return all, nil
}

// Subscribe emits the records loaded at open time and echoes every local
// write afterwards.
func (s *Store) Subscribe(ctx context.Context, _ string) (<-chan store.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.Add(ctx, s.key, store.Event{Snapshot: slices.Clone(s.txs)}), nil
}

func (s *Store) Create(_ context.Context, _ string, t core.Transaction) (string, error) {
	t, err := store.Prepare(t)
	if err != nil {
		return "", err
	}
	now := s.now()
	t.ID = NewID(now)
	t.CreatedAt = now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(slices.Clone(s.txs), t)
	if err := s.Write(next); err != nil {
		return "", err
	}
	s.txs = next
	s.hub.Publish(s.key, store.Event{Snapshot: slices.Clone(next)})
	return t.ID, nil
}

func (s *Store) Delete(_ context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	next := slices.Delete(slices.Clone(s.txs), i, i+1)
	if err := s.Write(next); err != nil {
		return err
	}
	s.txs = next
	s.hub.Publish(s.key, store.Event{Snapshot: slices.Clone(next)})
	return nil
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a local id of the form local_<unix ms>_<6 random chars>.
func NewID(now time.Time) string {
	var suffix [6]byte
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return "local_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix[:])
}
