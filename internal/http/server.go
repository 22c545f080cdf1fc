package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
	appweb "fintrack/web"
)

// Dependencies are the collaborators the server reads from and writes to.
type Dependencies struct {
	Store    store.Store
	Pipeline *dashboard.Pipeline
	// Sheets is optional; without it POST /export/sheets answers 503.
	Sheets sheets.RowExporter
	// Owner is the identity every transaction is read and written under.
	Owner   string
	Product string
	Now     func() time.Time
	// Degraded reports whether the store runs in local mode.
	Degraded func() bool
	// Ping, when set, checks the store for /readyz.
	Ping func(ctx context.Context) error
	Logger   *applog.Logger
	// WritesPerMinute limits POST and DELETE requests per client IP.
	WritesPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Dependencies
	logger    *applog.Logger
	access    *applog.StructuredLogger

	rateLimiter *rateLimiter
	suspicious  atomic.Int64
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Degraded == nil {
		deps.Degraded = func() bool { return false }
	}
	if deps.Product == "" {
		deps.Product = "FinTrack"
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		deps:        deps,
		logger:      logger,
		access:      applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(deps.WritesPerMinute),
		started:     time.Now(),
	}

	t, err := template.New("pages").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/history", s.handleHistory)
	mux.HandleFunc("GET /charts/trend.svg", s.handleTrendChart)
	mux.HandleFunc("GET /charts/donut.svg", s.handleDonutChart)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /export/{format}", s.handleExport)
	mux.HandleFunc("POST /export/sheets", s.handleExportSheets)

	s.Handler = withRequestID(
		applog.Middleware(logger)(
			applog.RequestIDMiddleware(requestIDFrom)(
				s.withSecurity(mux))))
	return s
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// withRequestID tags the request before the request logger is derived.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := generateRequestID()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// withSecurity adds security headers, rate limits writes per client IP and
// logs each completed request.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()

		if detectSuspiciousRequest(r, &s.suspicious) {
			applog.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path,
				applog.FieldComponent, applog.ComponentSecurity)
		}

		setSecurityHeaders(w, r)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldComponent, applog.ComponentRateLimit)
			rw.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		s.access.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) today() core.Date {
	return core.DateOf(s.deps.Now())
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.deps.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates are loaded and the first snapshot
// has arrived. Degraded mode is ready: it still serves reads and writes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	_, version, ready := s.deps.Pipeline.Snapshot()
	if !ready {
		checks["snapshot"] = "waiting"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["snapshot"] = "version " + strconv.FormatUint(version, 10)
	}

	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := s.deps.Ping(ctx)
		cancel()
		if err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	mode := "remote"
	if s.deps.Degraded() {
		mode = "degraded"
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"hits":           s.rateLimiter.hits.Load(),
	}
	checks["suspicious_requests"] = s.suspicious.Load()

	writeJSON(w, code, map[string]any{
		"status":    status,
		"mode":      mode,
		"timestamp": s.deps.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var templateFuncs = template.FuncMap{
	"svg": chart.SVG,
	"pct": func(p int) string { return strconv.Itoa(p) + "%" },
}
