// Package dashboard turns store snapshots into windowed summaries and the
// chart geometry derived from them.
package dashboard

import (
	"sort"

	"fintrack/internal/core"
	"fintrack/internal/window"
)

// Summary holds the aggregates of one filtered transaction set.
type Summary struct {
	TotalIncome  core.Money
	TotalExpense core.Money
	NetBalance   core.Money
	// Categories holds expense totals only, largest first.
	Categories []core.CategoryAmount
	// DailyTrend is nil unless the window is a day-count window.
	DailyTrend []core.DailyAmount
}

// Aggregate computes totals, the expense category breakdown and, for
// day-count windows, the sparse daily net trend of txs. The input is
// expected to be filtered by w already.
func Aggregate(txs []core.Transaction, w window.Window) Summary {
	var s Summary

	byCategory := make(map[string]int64)
	var order []string
	var byDay map[core.Date]int64
	if w.HasTrend() {
		byDay = make(map[core.Date]int64)
	}

	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			if _, seen := byCategory[t.Category]; !seen {
				order = append(order, t.Category)
			}
			byCategory[t.Category] += t.Amount.Cents
		default:
			continue
		}
		if byDay != nil && !t.Date.IsZero() {
			byDay[t.Date] += t.Signed().Cents
		}
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)

	if len(order) > 0 {
		s.Categories = make([]core.CategoryAmount, 0, len(order))
		for _, name := range order {
			s.Categories = append(s.Categories, core.CategoryAmount{Name: name, Amount: core.Money{Cents: byCategory[name]}})
		}
		sort.SliceStable(s.Categories, func(i, j int) bool {
			return s.Categories[i].Amount.Cents > s.Categories[j].Amount.Cents
		})
	}

	if byDay != nil {
		s.DailyTrend = make([]core.DailyAmount, 0, len(byDay))
		for d, c := range byDay {
			s.DailyTrend = append(s.DailyTrend, core.DailyAmount{Date: d, Amount: core.Money{Cents: c}})
		}
		sort.Slice(s.DailyTrend, func(i, j int) bool {
			return s.DailyTrend[i].Date.Before(s.DailyTrend[j].Date.Time)
		})
	}
	return s
}
