package mosaic

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with mosaic-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithScan tags the logger with a catalog scan id.
func (l *Logger) WithScan(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("scan_id", id),
	}
}

// LogSkip logs a thumbnail that could not be used.
func (l *Logger) LogSkip(ctx context.Context, path string, err error) {
	l.WarnContext(ctx, "thumbnail skipped",
		"path", path,
		"error", err,
	)
}

// LogCatalog logs a completed or failed catalog scan.
func (l *Logger) LogCatalog(ctx context.Context, dir string, files, colors, skipped int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "catalog failed",
			"dir", dir,
			"files", files,
			"error", err,
		)
	case skipped > 0:
		l.WarnContext(ctx, "catalog completed with skipped files",
			"dir", dir,
			"files", files,
			"colors", colors,
			"skipped", skipped,
		)
	default:
		l.InfoContext(ctx, "catalog completed",
			"dir", dir,
			"files", files,
			"colors", colors,
		)
	}
}

// LogTile logs a mosaic assembly.
func (l *Logger) LogTile(ctx context.Context, width, height, tiles int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tile failed",
			"width", width,
			"height", height,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "tile completed",
		"width", width,
		"height", height,
		"tiles", tiles,
		"elapsed", elapsed,
	)
}
