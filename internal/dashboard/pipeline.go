package dashboard

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/window"
)

// RecentCount is the number of transactions shown in the dashboard's recent
// list.
const RecentCount = 5

// View is everything the dashboard shows for one window on one day.
type View struct {
	Window       window.Window
	Today        core.Date
	Transactions []core.Transaction
	Recent       []core.Transaction
	Summary      Summary
	Trend        chart.TrendChart
	Donut        chart.DonutChart
	// Version identifies the snapshot the view was computed from.
	Version uint64
	// Ready is false until the first snapshot arrives.
	Ready bool
}

// Pipeline holds the latest store snapshot and derives dashboard views from
// it. Each snapshot replaces the previous one entirely.
type Pipeline struct {
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot []core.Transaction
	version  uint64
	ready    bool

	errOnce sync.Once
	views   *cache.LRU[View]
}

// NewPipeline returns an empty pipeline. A nil logger uses slog.Default.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger.With("component", "dashboard"),
		views:  cache.NewLRU[View](64, 0),
	}
}

// Run consumes events until ctx is done or the channel closes.
func (p *Pipeline) Run(ctx context.Context, events <-chan store.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.Apply(ev)
		}
	}
}

// Apply installs ev's snapshot. Error events leave the current snapshot in
// place; only the first one is logged.
func (p *Pipeline) Apply(ev store.Event) {
	if ev.Err != nil {
		p.errOnce.Do(func() {
			p.logger.Error("Transaction subscription failed", "error", ev.Err)
		})
		return
	}

	snap := slices.Clone(ev.Snapshot)
	slices.SortStableFunc(snap, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	p.mu.Lock()
	p.snapshot = snap
	p.version++
	p.ready = true
	version := p.version
	p.mu.Unlock()

	p.views.Purge()
	p.logger.Debug("Snapshot applied", "version", version, "transactions", len(snap))
}

// Snapshot returns the current transactions, newest date first.
func (p *Pipeline) Snapshot() (txs []core.Transaction, version uint64, ready bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.version, p.ready
}

// Filtered returns the snapshot restricted to w, with today taken from now.
func (p *Pipeline) Filtered(w window.Window, now time.Time) []core.Transaction {
	txs, _, _ := p.Snapshot()
	return window.Apply(txs, w, core.DateOf(now))
}

// View filters, aggregates and renders the latest snapshot for w. Results
// are memoised until the next snapshot or the next calendar day.
func (p *Pipeline) View(w window.Window, now time.Time) View {
	today := core.DateOf(now)
	txs, version, ready := p.Snapshot()

	key := strconv.FormatUint(version, 10) + "|" + w.Label() + "|" + today.String()
	if v, ok := p.views.Get(key); ok {
		return v
	}

	filtered := window.Apply(txs, w, today)
	summary := Aggregate(filtered, w)

	v := View{
		Window:       w,
		Today:        today,
		Transactions: filtered,
		Recent:       filtered[:min(RecentCount, len(filtered))],
		Summary:      summary,
		Donut:        chart.Donut(summary.Categories),
		Version:      version,
		Ready:        ready,
	}
	if w.HasTrend() {
		v.Trend = chart.Trend(summary.DailyTrend, w.DayCount(), today)
	} else {
		v.Trend = chart.TrendChart{Empty: true}
	}

	p.views.Set(key, v)
	return v
}
