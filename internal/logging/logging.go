// Package logging builds the application's slog.Logger on top of a
// charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Prefix string
}

// New returns a structured logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := charmlog.ParseLevel(strings.ToLower(defaultString(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(defaultString(opts.Format, "text")) {
	case "text":
		formatter = charmlog.TextFormatter
	case "json":
		formatter = charmlog.JSONFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
