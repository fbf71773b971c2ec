// Package log provides context-aware diagnostic logging for uncommitted.
// Diagnostics always go to stderr so stdout carries only scan results.
package log

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the logging type used across the module.
type Logger = zerolog.Logger

// Options configures a logger.
type Options struct {
	Level   string
	Writer  io.Writer
	NoColor bool
}

// New builds a console logger writing to opt.Writer.
func New(opt Options) *Logger {
	w := zerolog.ConsoleWriter{
		Out:        opt.Writer,
		NoColor:    opt.NoColor,
		TimeFormat: "15:04:05.000",
	}
	l := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
	return &l
}

// ParseLevel maps a level name to a zerolog level. Unknown names fall back
// to error so a typo never floods the terminal.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.ErrorLevel
	}
}

type ctxKey struct{}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a disabled logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}

// Named returns a child logger tagged with a component field.
func Named(ctx context.Context, component string) *Logger {
	l := FromContext(ctx).With().Str("component", component).Logger()
	return &l
}
