// Package logging builds the process-wide structured logger. Output is
// JSON lines so log files stay greppable when the TUI owns the
// terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	// Unknown or empty falls back to warn.
	Level string

	// File appends logs to the given path. Empty logs to stderr.
	File string

	// Output overrides File when set. Tests use it.
	Output io.Writer
}

// New builds a JSON-lines slog.Logger. The returned closer releases
// the log file; it is a no-op for stderr and custom writers.
func New(opts Options) (*slog.Logger, func() error, error) {
	closer := func() error { return nil }

	output := opts.Output
	if output == nil {
		if opts.File != "" {
			if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
			f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open log file: %w", err)
			}
			output = f
			closer = f.Close
		} else {
			output = os.Stderr
		}
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, handlerOpts)), closer, nil
}

// ParseLevel maps a config level name to a slog.Level. Unknown names
// fall back to warn, the quietest level that still surfaces problems.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
