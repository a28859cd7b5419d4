// Package log wraps slog with a per-component tag so every record names the
// part of the tracker it came from.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger that carries a component attribute. The leveled
// methods (Info, Warn, Error, Debug and their Context variants) come from
// the embedded logger.
type Logger struct {
	*slog.Logger
	handler   slog.Handler
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns the tracker defaults, honoring LOG_LEVEL when set.
func DefaultConfig() Config {
	return Config{
		Level:     ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "kharcha",
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing text records to stdout unless the config
// supplies its own handler.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return tagged(handler, config.Component)
}

func tagged(handler slog.Handler, component string) *Logger {
	l := slog.New(handler)
	if component != "" {
		l = l.With("component", component)
	}
	return &Logger{Logger: l, handler: handler, component: component}
}

// With returns a logger carrying additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), handler: l.handler, component: l.component}
}

// WithComponent returns a logger retagged for another component, built from
// the same handler so the old tag is not carried along.
func (l *Logger) WithComponent(component string) *Logger {
	return tagged(l.handler, component)
}

// Component returns the logger's component tag.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as the slog default, so packages logging
// through slog directly share the same handler.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
