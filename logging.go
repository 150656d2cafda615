package menu

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes a recovered failure or a notable tree operation.
type LogEvent struct {
	Op       string
	Kind     ErrorKind
	Path     string
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records menu events. Failures inside the tree are never surfaced to
// the host as panics; they are logged through this interface instead.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// SlogLogger writes events to a structured slog logger.
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger wraps logger, falling back to slog.Default when nil.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogLogger{Logger: logger.With("component", "menu")}
}

// Log implements Logger.
func (l SlogLogger) Log(event LogEvent) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{slog.String("op", event.Op)}
	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.Engine != "" {
		attrs = append(attrs, slog.String("engine", event.Engine), slog.String("expr", event.Expr), slog.Duration("duration", event.Duration))
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("kind", event.Kind.String()), slog.String("error", event.Err.Error()))
	}
	logger.LogAttrs(context.Background(), level, "menu event", attrs...)
}

// WithLogger attaches a logger to the Manager.
func WithLogger(logger Logger) Option {
	return func(cfg *managerConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

func (m *Manager) logError(op string, kind ErrorKind, path string, err error) {
	if err == nil {
		return
	}
	m.cfg.logger.Log(LogEvent{Op: op, Kind: kind, Path: path, Err: err})
}
