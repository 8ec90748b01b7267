// Package logger constructs the application's slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds the logger configuration.
type Config struct {
	Level  slog.Level
	Format string
}

// NewLogger initializes a slog logger based on the provided configuration.
// Format "json" is intended for CI log aggregation, "console" gives colored
// output for local runs, and "text" is the default logfmt-style handler. All
// diagnostics go to stderr so that stdout stays reserved for command output.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: cfg.Level,
		})
	case "console":
		handler = tint.NewHandler(output, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.Kitchen,
		})
	case "text":
		fallthrough
	default:
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: cfg.Level,
		})
	}

	return slog.New(handler)
}
