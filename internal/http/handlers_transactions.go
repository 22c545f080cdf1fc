package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrDescriptionTooLong)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Parse form error", applog.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	t, err := parseTransactionForm(r).toTransaction(s.today())
	if err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	id, err := s.deps.Store.Create(ctx, s.deps.Owner, t)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
			return
		}
		applog.NewStructuredLogger(logger).LogError(ctx, "Failed to save transaction", err, applog.OpCreate,
			applog.NewFields().WithTransaction("", string(t.Type), t.Amount.Cents, t.Category))
		InternalServerError("Error saving transaction").Write(w)
		return
	}

	applog.NewStructuredLogger(logger).LogTransactionCreated(ctx, s.deps.Owner, id, string(t.Type), t.Amount.Cents, t.Category)

	label := "Expense"
	if t.Type == core.Income {
		label = "Income"
	}
	msg := label + " of " + t.Amount.String() + " recorded"
	NewHTMXResponse().
		TriggerTransactionCreated(id, t.Date.String()).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// handleDeleteTransaction serves both DELETE /transactions/{id} and the
// form-friendly POST /transactions/{id}/delete.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := s.deps.Store.Delete(ctx, s.deps.Owner, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("Transaction not found").Write(w)
			return
		}
		applog.NewStructuredLogger(logger).LogError(ctx, "Failed to delete transaction", err, applog.OpDelete,
			applog.NewFields().WithTransaction(id, "", 0, ""))
		InternalServerError("Error deleting transaction").Write(w)
		return
	}

	applog.NewStructuredLogger(logger).LogTransactionDeleted(ctx, s.deps.Owner, id)
	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}
