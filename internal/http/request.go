package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fintrack/internal/core"
	"fintrack/internal/window"
)

// transactionRequest is the create form as submitted by the page.
type transactionRequest struct {
	Amount      string `validate:"required,max=32"`
	Type        string `validate:"omitempty,oneof=expense income"`
	Category    string `validate:"max=50"`
	Description string `validate:"max=200"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func parseTransactionForm(r *http.Request) transactionRequest {
	return transactionRequest{
		Amount:      strings.TrimSpace(r.PostForm.Get("amount")),
		Type:        strings.ToLower(strings.TrimSpace(r.PostForm.Get("type"))),
		Category:    sanitizeInput(r.PostForm.Get("category")),
		Description: sanitizeInput(r.PostForm.Get("description")),
		Date:        strings.TrimSpace(r.PostForm.Get("date")),
	}
}

// toTransaction validates the form and converts it. A missing date falls
// back to today.
func (req transactionRequest) toTransaction(today core.Date) (core.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return core.Transaction{}, validationMessage(err)
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: amount must be a positive number", core.ErrInvalidAmount)
	}
	txType, err := core.ParseTxType(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date := today
	if req.Date != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			return core.Transaction{}, err
		}
	}
	t := core.Transaction{
		Amount:      core.Money{Cents: cents},
		Type:        txType,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}.Normalize()
	return t, t.Validate()
}

// validationMessage turns validator errors into one readable error per form.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "max":
		return fmt.Errorf("%s is too long (max %s characters)", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: %q", core.ErrInvalidType, fe.Value())
	case "datetime":
		return fmt.Errorf("%w: %q", core.ErrInvalidDate, fe.Value())
	}
	return fmt.Errorf("invalid %s", field)
}

// parseWindow reads ?window=&start=&end= from the query string.
func parseWindow(r *http.Request) (window.Window, error) {
	q := r.URL.Query()
	return window.Parse(q.Get("window"), q.Get("start"), q.Get("end"))
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
