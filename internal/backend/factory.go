package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"fintrack/internal/amqp"
	"fintrack/internal/store"
	"fintrack/internal/store/local"
	"fintrack/internal/store/memory"
	"fintrack/internal/store/redisstore"
	"fintrack/internal/store/sqlite"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// RunFunc runs background work a backend needs (such as consuming change
// notifications) until ctx is done.
type RunFunc func(ctx context.Context) error

// BackendResult contains the store and its lifecycle hooks.
type BackendResult struct {
	Store   *Resilient
	Run     RunFunc
	Cleanup CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend opens the local fallback and then the primary store. A
// primary that cannot be reached is not an error: the result starts in
// degraded mode.
func (f *Factory) CreateBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	fallback, err := local.Open(cfg.LocalDataDir, cfg.AppID, cfg.Now)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	res := &BackendResult{Run: idle, Cleanup: noop}
	var primary store.Store

	switch cfg.Type {
	case RedisBackend:
		rs, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			AppID:    cfg.AppID,
		}, cfg.Now, f.logger)
		if err != nil {
			f.logger.Warn("Redis unavailable at startup", "addr", cfg.RedisAddr, "error", err)
			res.Store = NewResilient(nil, fallback, f.logger)
			res.Store.Degrade(err)
			return res, nil
		}
		primary = rs
		res.Cleanup = rs.Close
		f.logger.Info("Initialized Redis backend", "addr", cfg.RedisAddr, "app_id", cfg.AppID)

	case SQLiteBackend:
		ss, notifier, err := f.createSQLite(cfg)
		if err != nil {
			f.logger.Warn("SQLite unavailable at startup", "db_path", cfg.SQLiteDBPath, "error", err)
			res.Store = NewResilient(nil, fallback, f.logger)
			res.Store.Degrade(err)
			return res, nil
		}
		primary = ss
		res.Run = ss.Run
		res.Cleanup = func() error {
			var errs []error
			if notifier != nil {
				errs = append(errs, notifier.Close())
			}
			errs = append(errs, ss.Close())
			return errors.Join(errs...)
		}

	case MemoryBackend:
		primary = memory.New()
		f.logger.Info("Initialized memory backend")

	case LocalBackend:
		f.logger.Info("Initialized local backend", "data_directory", cfg.LocalDataDir, "key", fallback.Key())
	}

	res.Store = NewResilient(primary, fallback, f.logger)
	return res, nil
}

func (f *Factory) createSQLite(cfg Config) (*sqlite.Store, *amqp.Client, error) {
	opts := []sqlite.Option{sqlite.WithClock(cfg.Now), sqlite.WithLogger(f.logger)}

	var notifier *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, ulid.Make().String(), f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change fan-out", "error", err)
		} else {
			notifier = c
			opts = append(opts, sqlite.WithNotifier(c))
			f.logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "origin", c.Origin())
		}
	}

	ss, err := sqlite.Open(cfg.SQLiteDBPath, opts...)
	if err != nil {
		if notifier != nil {
			notifier.Close()
		}
		return nil, nil, err
	}
	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath, "amqp_enabled", notifier != nil)
	return ss, notifier, nil
}

func idle(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func noop() error { return nil }
