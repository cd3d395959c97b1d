// Package logger builds the application's structured logger: slog with
// configurable level and format, optional rotated file output, and
// error-level fan-out to Sentry.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction. It deliberately carries plain values
// rather than the application config so this package stays dependency-free
// at the bottom of the import graph.
type Options struct {
	Level  string
	Format string
	Env    string
	Sentry bool
	File   FileOptions
}

// FileOptions enables rotated file output when Path is set.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New constructs the application logger.
func New(opts Options) *slog.Logger {
	var out io.Writer = os.Stdout

	if opts.File.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotated)
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	if opts.Sentry {
		sentryHandler := slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
		handler = newTeeHandler(handler, sentryHandler)
	}

	return slog.New(handler).With(slog.String("env", opts.Env))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// teeHandler forwards records to a primary handler and, when enabled, a
// secondary one. The standard library offers no fan-out handler and the
// dependency set carries none, so this small composite fills the gap.
type teeHandler struct {
	primary   slog.Handler
	secondary slog.Handler
}

func newTeeHandler(primary, secondary slog.Handler) slog.Handler {
	return &teeHandler{primary: primary, secondary: secondary}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.secondary.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	if h.primary.Enabled(ctx, record.Level) {
		err = h.primary.Handle(ctx, record.Clone())
	}

	if h.secondary.Enabled(ctx, record.Level) {
		if serr := h.secondary.Handle(ctx, record.Clone()); serr != nil && err == nil {
			err = serr
		}
	}

	return err
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{
		primary:   h.primary.WithAttrs(attrs),
		secondary: h.secondary.WithAttrs(attrs),
	}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{
		primary:   h.primary.WithGroup(name),
		secondary: h.secondary.WithGroup(name),
	}
}
