package http

import (
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

const nothingToExport = "No transactions to export for this period"

// handleExport downloads the filtered transactions as csv, json or pdf.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		NotFoundError(err.Error()).Write(w)
		return
	}
	if format == export.FormatSheets {
		w.Header().Set("Allow", http.MethodPost)
		ErrorResponse(http.StatusMethodNotAllowed, "Use POST to export to Google Sheets").Write(w)
		return
	}
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}

	now := s.deps.Now()
	var body []byte
	switch format {
	case export.FormatCSV:
		body, err = export.CSV(s.deps.Pipeline.Filtered(win, now))
	case export.FormatJSON:
		body, err = export.JSON(s.deps.Pipeline.Filtered(win, now))
	case export.FormatPDF:
		v := s.deps.Pipeline.View(win, now)
		body, err = export.PDF(export.Report{
			Product:      s.deps.Product,
			Window:       win,
			Generated:    now,
			Summary:      v.Summary,
			Transactions: v.Transactions,
		})
	}
	if errors.Is(err, export.ErrNothingToExport) {
		NothingToExport(nothingToExport).Write(w)
		return
	}
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Export failed", err, applog.OpExport,
			applog.NewFields().WithComponent(applog.ComponentExport))
		InternalServerError("Export failed").Write(w)
		return
	}

	filename := export.Filename(format, win, s.deps.Product)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// handleExportSheets replaces the spreadsheet tab with the filtered rows.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.deps.Sheets == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Google Sheets export is not configured").Write(w)
		return
	}
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}

	rows := export.Rows(s.deps.Pipeline.Filtered(win, s.deps.Now()))
	if len(rows) == 0 {
		NothingToExport(nothingToExport).Write(w)
		return
	}

	ref, err := s.deps.Sheets.ExportRows(ctx, r.URL.Query().Get("tab"), export.Header, rows)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Sheets export failed", err, applog.OpExport,
			applog.NewFields().WithComponent(applog.ComponentSheets))
		ErrorResponse(http.StatusBadGateway, "Google Sheets export failed").Write(w)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Exported to Google Sheets",
		applog.FieldSheetsRef, ref,
		applog.FieldWindow, win.Label(),
		"rows", len(rows))
	msg := "Exported " + strconv.Itoa(len(rows)) + " transactions"
	NewHTMXResponse().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + msg + `</div>`).
		Write(w)
}
