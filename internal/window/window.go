// Package window selects the transactions that fall inside the active
// dashboard time window.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Kind distinguishes the three window selectors.
type Kind int

const (
	KindAll Kind = iota
	KindDays
	KindCustom
)

// DefaultDays is the window shown when the request does not pick one.
const DefaultDays = 30

// MaxDays bounds day-count windows to roughly ten years.
const MaxDays = 3660

var ErrInvalidWindow = errors.New("invalid window")

// Window is an immutable filter selector. The zero value selects everything.
type Window struct {
	kind  Kind
	days  int
	start core.Date
	end   core.Date
}

// Days selects the last d calendar days including today. Days(1) is today
// only; d is clamped to [1, MaxDays].
func Days(d int) Window {
	d = max(1, min(d, MaxDays))
	return Window{kind: KindDays, days: d}
}

// All selects every transaction.
func All() Window {
	return Window{kind: KindAll}
}

// Custom selects transactions between start and end inclusive. Either bound
// may be the zero date, in which case the window is unresolved and behaves
// like All.
func Custom(start, end core.Date) Window {
	return Window{kind: KindCustom, start: start, end: end}
}

// Parse builds a Window from request parameters: selector is a positive day
// count, "all" or "custom"; start and end are YYYY-MM-DD and only read for
// custom windows. Empty or malformed bounds leave the custom range
// unresolved rather than failing.
func Parse(selector, start, end string) (Window, error) {
	selector = strings.ToLower(strings.TrimSpace(selector))
	switch selector {
	case "":
		return Days(DefaultDays), nil
	case "all":
		return All(), nil
	case "custom":
		s, _ := core.ParseDate(start)
		e, _ := core.ParseDate(end)
		return Custom(s, e), nil
	}
	d, err := strconv.Atoi(strings.TrimSuffix(selector, "days"))
	if err != nil || d < 1 || d > MaxDays {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, selector)
	}
	return Days(d), nil
}

func (w Window) Kind() Kind { return w.kind }

// DayCount returns the number of days for a day-count window and 0 otherwise.
func (w Window) DayCount() int {
	if w.kind != KindDays {
		return 0
	}
	return w.days
}

// Bounds returns the custom range bounds (zero dates for other kinds).
func (w Window) Bounds() (start, end core.Date) {
	return w.start, w.end
}

// Resolved reports whether the window restricts the set at all.
func (w Window) Resolved() bool {
	switch w.kind {
	case KindDays:
		return true
	case KindCustom:
		return !w.start.IsZero() && !w.end.IsZero()
	default:
		return false
	}
}

// HasTrend reports whether a daily trend is computed for this window: only
// bounded day-count windows have one.
func (w Window) HasTrend() bool {
	return w.kind == KindDays
}

// Selector is the inverse of Parse's first argument.
func (w Window) Selector() string {
	switch w.kind {
	case KindAll:
		return "all"
	case KindCustom:
		return "custom"
	default:
		return strconv.Itoa(w.days)
	}
}

// Label names the window in file names and reports.
func (w Window) Label() string {
	switch w.kind {
	case KindAll:
		return "all"
	case KindCustom:
		if !w.Resolved() {
			return "all"
		}
		return "custom_" + w.start.String() + "_" + w.end.String()
	default:
		return strconv.Itoa(w.days) + "days"
	}
}

// Description is the human-readable range used in reports.
func (w Window) Description() string {
	switch w.kind {
	case KindAll:
		return "All time"
	case KindCustom:
		if !w.Resolved() {
			return "All time"
		}
		return w.start.String() + " to " + w.end.String()
	default:
		if w.days == 1 {
			return "Today"
		}
		return strconv.Itoa(w.days) + " days"
	}
}

// Cutoff returns the first date included by a day-count window.
func (w Window) Cutoff(today core.Date) core.Date {
	return today.AddDays(-(w.days - 1))
}

// Contains reports whether a single date falls inside the window.
// A zero date never falls inside a bounded window.
func (w Window) Contains(d core.Date, today core.Date) bool {
	if !w.Resolved() {
		return true
	}
	if d.IsZero() {
		return false
	}
	switch w.kind {
	case KindDays:
		return d.Compare(w.Cutoff(today)) >= 0
	default:
		return d.Compare(w.start) >= 0 && d.Compare(w.end) <= 0
	}
}

// Apply returns the transactions inside w, preserving their order. The input
// slice is never modified; for unbounded windows it is returned as is.
func Apply(txs []core.Transaction, w Window, today core.Date) []core.Transaction {
	if !w.Resolved() {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if w.Contains(t.Date, today) {
			out = append(out, t)
		}
	}
	return out
}
