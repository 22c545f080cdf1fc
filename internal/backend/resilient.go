package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/local"
)

// Resilient routes calls to a primary store until it fails to connect or a
// subscription reports an error. It then switches permanently to the local
// store: the failure is logged once and never retried.
type Resilient struct {
	primary store.Store
	local   *local.Store
	logger  *slog.Logger

	degraded atomic.Bool
	once     sync.Once
}

var _ store.Store = (*Resilient)(nil)

// NewResilient wraps primary. A nil primary starts in degraded mode.
func NewResilient(primary store.Store, fallback *local.Store, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resilient{primary: primary, local: fallback, logger: logger.With("component", "backend")}
	if primary == nil {
		r.degraded.Store(true)
	}
	return r
}

// Degraded reports whether calls are served by the local store.
func (r *Resilient) Degraded() bool { return r.degraded.Load() }

// Degrade switches to the local store, logging the first cause only.
func (r *Resilient) Degrade(cause error) {
	r.once.Do(func() {
		r.degraded.Store(true)
		r.logger.Warn("Store unavailable, continuing in local mode",
			"error", cause,
			"local_key", r.local.Key())
	})
}

// Ping checks the primary store when it can be pinged. In degraded mode the
// local store serves every call, so there is nothing to check.
func (r *Resilient) Ping(ctx context.Context) error {
	if r.Degraded() {
		return nil
	}
	p, ok := r.primary.(store.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}

func (r *Resilient) Subscribe(ctx context.Context, owner string) (<-chan store.Event, error) {
	if r.Degraded() {
		return r.local.Subscribe(ctx, owner)
	}
	upstream, err := r.primary.Subscribe(ctx, owner)
	if err != nil {
		r.Degrade(err)
		return r.local.Subscribe(ctx, owner)
	}

	out := make(chan store.Event, 1)
	go func() {
		defer close(out)
		for ev := range upstream {
			if ev.Err == nil {
				store.Send(out, ev)
				continue
			}
			r.Degrade(ev.Err)
			fallback, err := r.local.Subscribe(ctx, owner)
			if err != nil {
				store.Send(out, store.Event{Err: err})
				return
			}
			for ev := range fallback {
				store.Send(out, ev)
			}
			return
		}
	}()
	return out, nil
}

func (r *Resilient) Create(ctx context.Context, owner string, t core.Transaction) (string, error) {
	if r.Degraded() {
		return r.local.Create(ctx, owner, t)
	}
	return r.primary.Create(ctx, owner, t)
}

func (r *Resilient) Delete(ctx context.Context, owner, id string) error {
	if r.Degraded() {
		return r.local.Delete(ctx, owner, id)
	}
	return r.primary.Delete(ctx, owner, id)
}
