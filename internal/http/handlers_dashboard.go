package http

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	applog "fintrack/internal/log"
	"fintrack/internal/window"
)

type windowOption struct {
	Value  string
	Label  string
	Active bool
}

var windowChoices = []struct{ value, label string }{
	{"1", "Today"},
	{"7", "7 Days"},
	{"30", "30 Days"},
	{"all", "All Time"},
	{"custom", "Custom"},
}

type pageData struct {
	Product    string
	View       dashboard.View
	Windows    []windowOption
	Categories []string
	Today      string
	Query      template.URL
	Degraded   bool
}

// windowQuery is the encoded window selection appended to links.
func windowQuery(w window.Window) string {
	v := url.Values{"window": {w.Selector()}}
	if w.Kind() == window.KindCustom {
		start, end := w.Bounds()
		if !start.IsZero() {
			v.Set("start", start.String())
		}
		if !end.IsZero() {
			v.Set("end", end.String())
		}
	}
	return v.Encode()
}

func (s *Server) page(w window.Window) pageData {
	view := s.deps.Pipeline.View(w, s.deps.Now())
	opts := make([]windowOption, len(windowChoices))
	for i, c := range windowChoices {
		opts[i] = windowOption{Value: c.value, Label: c.label, Active: c.value == w.Selector()}
	}
	return pageData{
		Product:    s.deps.Product,
		View:       view,
		Windows:    opts,
		Categories: core.Categories,
		Today:      view.Today.String(),
		Query:      template.URL(windowQuery(w)),
		Degraded:   s.deps.Degraded(),
	}
}

// render executes a page template into a buffer first so that a failing
// template never sends a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// windowOrError parses the window selection, answering 400 when it is
// malformed.
func (s *Server) windowOrError(w http.ResponseWriter, r *http.Request) (window.Window, bool) {
	win, err := parseWindow(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return window.Window{}, false
	}
	return win, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	s.render(w, r, "index.html", s.page(win))
}

// handleDashboard renders the totals, charts and recent list partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	s.render(w, r, "dashboard", s.page(win))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	s.render(w, r, "history", s.page(win))
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	view := s.deps.Pipeline.View(win, s.deps.Now())
	s.writeSVG(w, r, func(buf *bytes.Buffer) error { return chart.RenderTrendSVG(buf, view.Trend) })
}

func (s *Server) handleDonutChart(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	view := s.deps.Pipeline.View(win, s.deps.Now())
	s.writeSVG(w, r, func(buf *bytes.Buffer) error { return chart.RenderDonutSVG(buf, view.Donut) })
}

func (s *Server) writeSVG(w http.ResponseWriter, r *http.Request, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chart render failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type amountJSON struct {
	Name   string `json:"name,omitempty"`
	Date   string `json:"date,omitempty"`
	Amount string `json:"amount"`
}

type summaryJSON struct {
	Window       string       `json:"window"`
	Label        string       `json:"label"`
	Description  string       `json:"description"`
	Today        string       `json:"today"`
	TotalIncome  string       `json:"totalIncome"`
	TotalExpense string       `json:"totalExpense"`
	NetBalance   string       `json:"netBalance"`
	Count        int          `json:"count"`
	Categories   []amountJSON `json:"categories"`
	DailyTrend   []amountJSON `json:"dailyTrend,omitempty"`
	Version      uint64       `json:"version"`
	Ready        bool         `json:"ready"`
	Degraded     bool         `json:"degraded"`
}

// handleSummary returns the aggregates of the selected window as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrError(w, r)
	if !ok {
		return
	}
	v := s.deps.Pipeline.View(win, s.deps.Now())
	out := summaryJSON{
		Window:       win.Selector(),
		Label:        win.Label(),
		Description:  win.Description(),
		Today:        v.Today.String(),
		TotalIncome:  v.Summary.TotalIncome.String(),
		TotalExpense: v.Summary.TotalExpense.String(),
		NetBalance:   v.Summary.NetBalance.String(),
		Count:        len(v.Transactions),
		Categories:   make([]amountJSON, 0, len(v.Summary.Categories)),
		Version:      v.Version,
		Ready:        v.Ready,
		Degraded:     s.deps.Degraded(),
	}
	for _, c := range v.Summary.Categories {
		out.Categories = append(out.Categories, amountJSON{Name: c.Name, Amount: c.Amount.String()})
	}
	for _, d := range v.Summary.DailyTrend {
		out.DailyTrend = append(out.DailyTrend, amountJSON{Date: d.Date.String(), Amount: d.Amount.String()})
	}
	writeJSON(w, http.StatusOK, out)
}
