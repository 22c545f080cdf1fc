package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2025-03-01 02:00 in UTC+9 is still Feb 28 in UTC.
	now := time.Date(2025, 3, 1, 2, 0, 0, 0, loc)
	if got := DateOf(now).String(); got != "2025-03-01" {
		t.Fatalf("DateOf = %s, want 2025-03-01", got)
	}
}

func TestDateArithmeticAndFormat(t *testing.T) {
	d := NewDate(2024, 3, 1)
	if got := d.AddDays(-1).String(); got != "2024-02-29" {
		t.Fatalf("AddDays(-1) = %s", got)
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should format as empty string")
	}
	if d.Compare(d.AddDays(1)) != -1 || d.Compare(d) != 0 {
		t.Fatalf("unexpected Compare results")
	}
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"", Expense, true},
		{"expense", Expense, true},
		{" Income ", Income, true},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTxType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %q err=%v", tc.in, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q: expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestTransactionNormalizeAndValidate(t *testing.T) {
	tx := Transaction{
		Amount:   Money{Cents: 1000},
		Type:     Income,
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
	}.Normalize()
	if tx.Category != "" {
		t.Fatalf("income should drop its category, got %q", tx.Category)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	exp := Transaction{Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)}.Normalize()
	if exp.Type != Expense || exp.Category != DefaultCategory {
		t.Fatalf("unexpected defaults: %+v", exp)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 0}, Type: Expense, Date: NewDate(2025, 1, 1)},
		{Amount: Money{Cents: 1}, Type: "gift", Date: NewDate(2025, 1, 1)},
		{Amount: Money{Cents: 1}, Type: Expense},
		{Amount: Money{Cents: 1}, Type: Expense, Date: NewDate(2025, 1, 1), Description: string(make([]byte, 201))},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSigned(t *testing.T) {
	in := Transaction{Amount: Money{Cents: 500}, Type: Income}
	out := Transaction{Amount: Money{Cents: 500}, Type: Expense}
	if in.Signed().Cents != 500 || out.Signed().Cents != -500 {
		t.Fatalf("unexpected signed amounts: %d %d", in.Signed().Cents, out.Signed().Cents)
	}
}
