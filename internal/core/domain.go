package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

// DefaultCategory is assigned to expenses stored without a category.
const DefaultCategory = "Other"

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Categories is the suggested set offered for expenses.
var Categories = []string{"Food", "Transport", "Rent", "Shopping", "Entertainment", "Health", "Bills", "Other"}

type (
	TxType string

	// Date is a calendar date without a time component, kept at UTC midnight
	// so that comparisons and arithmetic never cross a DST boundary.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Amount      Money
		Type        TxType
		Category    string // Only meaningful for expenses
		Description string
		Date        Date
		CreatedAt   time.Time // Server assigned, ordering hint only
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsValid reports whether t is one of the known transaction types.
func (t TxType) IsValid() bool {
	switch t {
	case Expense, Income:
		return true
	default:
		return false
	}
}

// ParseTxType maps user input to a TxType, defaulting to Expense when empty.
func ParseTxType(s string) (TxType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Expense, nil
	}
	t := TxType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Normalize applies creation defaults: expense type when unset, no category
// for income and the default category for uncategorised expenses.
func (t Transaction) Normalize() Transaction {
	if t.Type == "" {
		t.Type = Expense
	}
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	switch t.Type {
	case Income:
		t.Category = ""
	case Expense:
		if t.Category == "" {
			t.Category = DefaultCategory
		}
	}
	return t
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

// Signed returns the amount as a net movement: positive for income,
// negative for expenses.
func (t Transaction) Signed() Money {
	if t.Type == Income {
		return t.Amount
	}
	return Money{Cents: -t.Amount.Cents}
}
