package common

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// nopHandler discards every record; Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by every engine package.
// By default the engine is silent. Passing nil restores the silent logger.
//
// Levels used by the engine:
//   - debug: pipeline, bind group and texture creation
//   - info: adapter selection, surface configuration, lifecycle
//   - warn: skipped frames and surface timeouts
//   - error: unclassified surface failures
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the engine's current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// NewLogger builds a slog.Logger writing to w.
//
// Parameters:
//   - w: destination writer
//   - level: debug, info, warn or error (case-insensitive)
//   - format: "json" for JSON output, anything else for text
//
// Returns:
//   - *slog.Logger: the configured logger
//   - error: if level cannot be parsed
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
