// Package sqlite persists transactions in a local SQLite database. Changes
// are pushed to in-process subscribers and, when a notifier is configured,
// announced to other instances sharing the database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Notifier broadcasts change notifications between instances.
type Notifier interface {
	PublishChange(ctx context.Context, owner string, op amqp.Op, id string) error
	ConsumeChanges(ctx context.Context, handler func(*amqp.ChangeMessage) error) error
}

type Store struct {
	db       *sql.DB
	hub      *store.Hub
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open creates the database file if needed and applies pending migrations.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		db:     db,
		hub:    store.NewHub(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "sqlite_store")
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Run reloads subscribers' snapshots when other instances announce changes.
// Without a notifier it just waits for ctx.
func (s *Store) Run(ctx context.Context) error {
	if s.notifier == nil {
		<-ctx.Done()
		return nil
	}
	return s.notifier.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		s.logger.DebugContext(ctx, "Remote change received", "owner", msg.Owner, "op", msg.Op, "id", msg.ID)
		s.refresh(ctx, msg.Owner)
		return nil
	})
}

// List returns owner's coerced transactions, newest date first.
func (s *Store) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount_cents, type, category, description, date, created_at
		FROM transactions
		WHERE owner = ?
		ORDER BY date DESC, created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	today := core.DateOf(s.now())
	var out []core.Transaction
	for rows.Next() {
		var (
			doc       core.Document
			cents     int64
			createdAt string
		)
		if err := rows.Scan(&doc.ID, &cents, &doc.Type, &doc.Category, &doc.Description, &doc.Date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		doc.Amount = core.Money{Cents: cents}.String()
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			doc.CreatedAt = &ts
		}
		out = append(out, core.Coerce(doc, today))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) Subscribe(ctx context.Context, owner string) (<-chan store.Event, error) {
	snap, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.hub.Add(ctx, owner, store.Event{Snapshot: snap}), nil
}

func (s *Store) Create(ctx context.Context, owner string, t core.Transaction) (string, error) {
	t, err := store.Prepare(t)
	if err != nil {
		return "", err
	}
	t.ID = ulid.Make().String()
	t.CreatedAt = s.now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner, amount_cents, type, category, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, owner, t.Amount.Cents, string(t.Type), t.Category, t.Description, t.Date.String(), t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	s.changed(ctx, owner, amqp.OpCreate, t.ID)
	return t.ID, nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	s.logger.InfoContext(ctx, "Transaction deleted", "id", id)
	s.changed(ctx, owner, amqp.OpDelete, id)
	return nil
}

func (s *Store) changed(ctx context.Context, owner string, op amqp.Op, id string) {
	s.refresh(ctx, owner)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishChange(ctx, owner, op, id); err != nil {
		// Local subscribers are already up to date.
		s.logger.WarnContext(ctx, "Failed to announce change", "error", err, "op", op, "id", id)
	}
}

func (s *Store) refresh(ctx context.Context, owner string) {
	if s.hub.Subscribers(owner) == 0 {
		return
	}
	snap, err := s.List(ctx, owner)
	if err != nil {
		s.hub.Publish(owner, store.Event{Err: fmt.Errorf("%w: %w", store.ErrUnavailable, err)})
		return
	}
	s.hub.Publish(owner, store.Event{Snapshot: snap})
}
