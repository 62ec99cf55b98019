// Package logging provides helpers for dependency-injected structured logging.
//
// Components receive a *slog.Logger at construction and scope it once with
// their own attributes; nothing in the pipeline touches global slog state.
// A nil logger means discard, so library code never has to nil-check.
//
// The base logger (output, format, level) is configured only in main.
package logging

import (
	"context"
	"log/slog"
)

// discardHandler is a handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns the provided logger if non-nil, otherwise a discard logger:
//
//	func New(logger *slog.Logger) *Collector {
//	    logger = logging.Default(logger)
//	    return &Collector{logger: logger.With("component", "collector")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}
