package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	m := Money{Cents: 1250}
	if m.String() != "12.50" {
		t.Fatalf("String = %q", m.String())
	}
	if m.Float64() != 12.5 {
		t.Fatalf("Float64 = %v", m.Float64())
	}
	if got := m.Sub(Money{Cents: 1300}); got.Cents != -50 {
		t.Fatalf("Sub = %d", got.Cents)
	}
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{12.34, 1234},
		{50, 5000},
		{int64(3), 300},
		{"7.5", 750},
		{"7,5", 750},
		{json.Number("19.99"), 1999},
		{"abc", 0},
		{nil, 0},
		{true, 0},
		{-4.0, 0},
		{"", 0},
		{"1e20", 0},
		{1e20, 0},
		{"92233720368547758.08", 0},
		{int64(math.MaxInt64), 0},
		{"92233720368547758.07", math.MaxInt64},
	}
	for _, tc := range cases {
		if got := CoerceAmount(tc.in); got.Cents != tc.want {
			t.Fatalf("CoerceAmount(%#v) = %d, want %d", tc.in, got.Cents, tc.want)
		}
	}
}

func TestCoerceDefaults(t *testing.T) {
	today := NewDate(2025, 6, 15)
	got := Coerce(Document{ID: "a", Amount: "oops"}, today)
	if got.Amount.Cents != 0 {
		t.Fatalf("malformed amount should coerce to 0, got %d", got.Amount.Cents)
	}
	if got.Type != Expense || got.Category != DefaultCategory {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.Date != today {
		t.Fatalf("missing date should fall back to today, got %s", got.Date)
	}

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	in := Coerce(Document{ID: "b", Amount: 1000.0, Type: "income", Category: "Food", Date: "2025-06-01", CreatedAt: &created}, today)
	if in.Type != Income || in.Date.String() != "2025-06-01" || in.Amount.Cents != 100000 {
		t.Fatalf("unexpected coerced income: %+v", in)
	}
	if !in.CreatedAt.Equal(created) {
		t.Fatalf("createdAt not carried over")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tx := Transaction{
		ID:          "x1",
		Amount:      Money{Cents: 4999},
		Type:        Expense,
		Category:    "Food",
		Description: "lunch",
		Date:        NewDate(2025, 2, 3),
	}
	back := Coerce(ToDocument(tx), NewDate(2030, 1, 1))
	if back != tx {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, tx)
	}
}
