package window

import (
	"errors"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

var today = core.NewDate(2025, 10, 15)

func tx(id string, daysAgo int) core.Transaction {
	return core.Transaction{
		ID:     id,
		Amount: core.Money{Cents: 100},
		Type:   core.Expense,
		Date:   today.AddDays(-daysAgo),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyDayCount(t *testing.T) {
	set := []core.Transaction{tx("a", 0), tx("b", 6), tx("c", 7), tx("d", 30), tx("e", 1)}

	cases := []struct {
		days int
		want []string
	}{
		{1, []string{"a"}},
		{7, []string{"a", "b", "e"}},
		{8, []string{"a", "b", "c", "e"}},
		{31, []string{"a", "b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		got := ids(Apply(set, Days(tc.days), today))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Days(%d) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestApplyDayCountMatchesCutoffDefinition(t *testing.T) {
	var set []core.Transaction
	for i := -3; i < 40; i++ {
		set = append(set, tx(core.NewDate(2000, 1, 1).AddDays(i).String(), i))
	}
	for d := 1; d <= 35; d++ {
		cutoff := today.AddDays(-(d - 1))
		got := Apply(set, Days(d), today)
		want := 0
		for _, tr := range set {
			if tr.Date.Compare(cutoff) >= 0 {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("Days(%d) kept %d, want %d", d, len(got), want)
		}
		for _, tr := range got {
			if tr.Date.Compare(cutoff) < 0 {
				t.Fatalf("Days(%d) kept %s before cutoff %s", d, tr.Date, cutoff)
			}
		}
	}
}

func TestApplyAllIsIdentity(t *testing.T) {
	set := []core.Transaction{tx("z", 400), tx("a", 0), {ID: "nodate"}}
	got := Apply(set, All(), today)
	if !reflect.DeepEqual(got, set) {
		t.Fatalf("All() changed the set: %v", ids(got))
	}
}

func TestApplyCustomRange(t *testing.T) {
	set := []core.Transaction{tx("a", 0), tx("b", 5), tx("c", 10), tx("d", 11)}
	w := Custom(today.AddDays(-10), today.AddDays(-5))
	if got := ids(Apply(set, w, today)); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("custom range = %v", got)
	}
}

func TestApplyCustomMissingBoundFallsBack(t *testing.T) {
	set := []core.Transaction{tx("a", 0), tx("b", 50)}
	for _, w := range []Window{
		Custom(today.AddDays(-3), core.Date{}),
		Custom(core.Date{}, today),
		Custom(core.Date{}, core.Date{}),
	} {
		if got := ids(Apply(set, w, today)); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Fatalf("unresolved custom window filtered the set: %v", got)
		}
	}
}

func TestApplyExcludesZeroDateFromBoundedWindows(t *testing.T) {
	set := []core.Transaction{{ID: "nodate", Amount: core.Money{Cents: 1}}, tx("a", 0)}
	if got := ids(Apply(set, Days(30), today)); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("zero date leaked into day window: %v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	set := []core.Transaction{tx("a", 0), tx("b", 3), tx("c", 9), tx("d", 20)}
	narrow := Apply(set, Days(7), today)
	again := Apply(narrow, Days(7), today)
	wider := Apply(narrow, Days(30), today)
	if !reflect.DeepEqual(narrow, again) || !reflect.DeepEqual(narrow, wider) {
		t.Fatalf("re-filtering changed the result")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		sel, start, end string
		label           string
		ok              bool
	}{
		{"", "", "", "30days", true},
		{"7", "", "", "7days", true},
		{"1", "", "", "1days", true},
		{"30days", "", "", "30days", true},
		{"all", "", "", "all", true},
		{"custom", "2025-01-01", "2025-01-31", "custom_2025-01-01_2025-01-31", true},
		{"custom", "2025-01-01", "", "all", true},
		{"0", "", "", "", false},
		{"-3", "", "", "", false},
		{"week", "", "", "", false},
		{"3660", "", "", "3660days", true},
		{"3661", "", "", "", false},
		{"20000000", "", "", "", false},
	}
	for _, tc := range cases {
		w, err := Parse(tc.sel, tc.start, tc.end)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidWindow) {
				t.Fatalf("Parse(%q) expected ErrInvalidWindow, got %v", tc.sel, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.sel, err)
		}
		if w.Label() != tc.label {
			t.Fatalf("Parse(%q).Label() = %q, want %q", tc.sel, w.Label(), tc.label)
		}
	}
}

func TestDaysClamped(t *testing.T) {
	if got := Days(1 << 30).DayCount(); got != MaxDays {
		t.Fatalf("Days(huge).DayCount() = %d, want %d", got, MaxDays)
	}
	if got := Days(0).DayCount(); got != 1 {
		t.Fatalf("Days(0).DayCount() = %d, want 1", got)
	}
}

func TestHasTrend(t *testing.T) {
	if !Days(7).HasTrend() || All().HasTrend() || Custom(today, today).HasTrend() {
		t.Fatalf("only day-count windows carry a trend")
	}
	if (Window{}).Resolved() {
		t.Fatalf("zero window should select everything")
	}
}
