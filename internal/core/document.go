package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Document is a transaction as persisted by an untyped document store.
// Amount is left untyped because upstream writers have stored both numbers
// and strings over time.
type Document struct {
	ID          string     `json:"id,omitempty"`
	Amount      any        `json:"amount"`
	Type        string     `json:"type,omitempty"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// ToDocument converts a validated transaction into its stored shape.
func ToDocument(t Transaction) Document {
	doc := Document{
		ID:          t.ID,
		Amount:      t.Amount.Float64(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
	}
	if !t.CreatedAt.IsZero() {
		created := t.CreatedAt.UTC()
		doc.CreatedAt = &created
	}
	return doc
}

// Coerce turns a stored document into a fully typed Transaction. It never
// fails: a malformed amount becomes zero, a missing or unparsable date
// becomes today, a missing type becomes expense and an uncategorised
// expense falls into DefaultCategory.
func Coerce(doc Document, today Date) Transaction {
	t := Transaction{
		ID:          doc.ID,
		Amount:      CoerceAmount(doc.Amount),
		Type:        Expense,
		Category:    strings.TrimSpace(doc.Category),
		Description: doc.Description,
		Date:        today,
	}
	if typ := TxType(strings.ToLower(strings.TrimSpace(doc.Type))); typ.IsValid() {
		t.Type = typ
	}
	if t.Type == Expense && t.Category == "" {
		t.Category = DefaultCategory
	}
	if d, err := ParseDate(doc.Date); err == nil {
		t.Date = d
	}
	if doc.CreatedAt != nil {
		t.CreatedAt = *doc.CreatedAt
	}
	return t
}

// CoerceAmount converts an untyped amount to Money. Anything that is not a
// positive finite number yields zero.
func CoerceAmount(v any) Money {
	var m Money
	switch a := v.(type) {
	case float64:
		m = MoneyFromFloat(a)
	case float32:
		m = MoneyFromFloat(float64(a))
	case int:
		m = moneyFromDecimal(decimal.NewFromInt(int64(a)))
	case int64:
		m = moneyFromDecimal(decimal.NewFromInt(a))
	case json.Number:
		m = moneyFromString(a.String())
	case string:
		m = moneyFromString(a)
	}
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

func moneyFromString(s string) Money {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// Accept what strconv accepts as a last resort ("Inf" is filtered by MoneyFromFloat).
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return Money{}
		}
		return MoneyFromFloat(f)
	}
	return moneyFromDecimal(d)
}
