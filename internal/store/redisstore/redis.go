// Package redisstore keeps each owner's transactions in a Redis hash and
// pushes fresh snapshots to subscribers through Redis pub/sub.
package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Addr     string
	Password string
	DB       int
	AppID    string
}

type Store struct {
	rdb    *redis.Client
	appID  string
	now    func() time.Time
	logger *slog.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config, now func() time.Time, logger *slog.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: ping redis: %w", store.ErrUnavailable, err)
	}
	return NewWithClient(rdb, cfg.AppID, now, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, appID string, now func() time.Time, logger *slog.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{rdb: rdb, appID: appID, now: now, logger: logger.With("component", "redis_store")}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Store) key(owner string) string { return store.Namespace(s.appID, owner) }

func (s *Store) channel(owner string) string { return s.key(owner) + ":changes" }

// List returns owner's coerced transactions ordered by date, newest first.
func (s *Store) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read transactions: %w", store.ErrUnavailable, err)
	}
	today := core.DateOf(s.now())
	out := make([]core.Transaction, 0, len(raw))
	for id, data := range raw {
		var doc core.Document
		if err := json.UnmarshalFromString(data, &doc); err != nil {
			s.logger.WarnContext(ctx, "Skipping undecodable record", "id", id, "error", err)
			continue
		}
		doc.ID = id
		out = append(out, core.Coerce(doc, today))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c > 0
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Create(ctx context.Context, owner string, t core.Transaction) (string, error) {
	t, err := store.Prepare(t)
	if err != nil {
		return "", err
	}
	t.ID = ulid.Make().String()
	t.CreatedAt = s.now().UTC()

	doc := core.ToDocument(t)
	doc.ID = ""
	data, err := json.MarshalToString(doc)
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key(owner), t.ID, data)
		p.Publish(ctx, s.channel(owner), t.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store transaction: %w", err)
	}
	return t.ID, nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.HDel(ctx, s.key(owner), id)
		p.Publish(ctx, s.channel(owner), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if del.Val() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Subscribe listens on owner's change channel before reading the initial
// snapshot so that no change between the two is missed.
func (s *Store) Subscribe(ctx context.Context, owner string) (<-chan store.Event, error) {
	ps := s.rdb.Subscribe(ctx, s.channel(owner))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("%w: subscribe: %w", store.ErrUnavailable, err)
	}
	snap, err := s.List(ctx, owner)
	if err != nil {
		ps.Close()
		return nil, err
	}

	out := make(chan store.Event, 1)
	out <- store.Event{Snapshot: snap}

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					store.Send(out, store.Event{Err: fmt.Errorf("%w: subscription closed", store.ErrUnavailable)})
					return
				}
				snap, err := s.List(ctx, owner)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					store.Send(out, store.Event{Err: err})
					return
				}
				store.Send(out, store.Event{Snapshot: snap})
			}
		}
	}()
	return out, nil
}
