// Package log configures the application's structured logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger. Every record carries at most one component
// attribute: the innermost one wins.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	// File, when set, receives a copy of every record and is rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Output defaults to stdout.
	Output  io.Writer
	Handler slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:      slog.LevelInfo,
		Component:  ComponentApp,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}
}

// ParseLevel maps LOG_LEVEL values to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", s)
	}
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	l := &Logger{}

	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		if config.File != "" {
			rotator := &lumberjack.Logger{
				Filename:   config.File,
				MaxSize:    config.MaxSizeMB,
				MaxBackups: config.MaxBackups,
				MaxAge:     config.MaxAgeDays,
				Compress:   true,
			}
			l.closer = rotator
			out = io.MultiWriter(out, rotator)
		}
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: config.Level})
	}

	l.Logger = slog.New(&componentHandler{next: handler})
	if config.Component != "" {
		l.Logger = l.Logger.With(FieldComponent, config.Component)
	}
	return l
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent returns a logger for a sub-component, replacing the parent's
// component. The returned logger shares the parent's output.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With(FieldComponent, component)}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// componentHandler keeps the component attribute out of the wrapped
// handler's accumulated attributes so that a derived logger replaces it
// instead of appending a second one.
type componentHandler struct {
	next      slog.Handler
	component slog.Value
}

func (h *componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == FieldComponent {
			c.component = a.Value
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) > 0 {
		c.next = h.next.WithAttrs(rest)
	}
	return &c
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	return &c
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == FieldComponent {
			component = a.Value
		} else {
			attrs = append(attrs, a)
		}
		return true
	})

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	if component.Kind() != slog.KindAny || component.Any() != nil {
		out.AddAttrs(slog.Attr{Key: FieldComponent, Value: component})
	}
	out.AddAttrs(attrs...)
	return h.next.Handle(ctx, out)
}
