// Package logging wraps log/slog with the field names used across the containers.
package logging

import (
	"context"
	"log/slog"
)

// Logger wraps slog.Logger with container-specific helpers.
type Logger struct {
	*slog.Logger
}

// discardHandler drops every record and reports every level as disabled.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// New wraps l. A nil l yields a logger that discards everything.
func New(l *slog.Logger) *Logger {
	if l == nil {
		return Noop()
	}
	return &Logger{Logger: l}
}

// Noop creates a Logger that discards all log output.
func Noop() *Logger {
	return &Logger{Logger: slog.New(discardHandler{})}
}

// WithComponent tags every record with the emitting container kind.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogGrow logs a storage reallocation triggered by a full push.
func (l *Logger) LogGrow(oldCap, newCap, length int) {
	l.Debug("storage grown",
		"old_capacity", oldCap,
		"new_capacity", newCap,
		"length", length,
	)
}

// LogCompact logs an explicit compaction of a ring.
func (l *Logger) LogCompact(oldCap, newCap int) {
	l.Debug("storage compacted",
		"old_capacity", oldCap,
		"new_capacity", newCap,
	)
}

// LogHoleCompact logs a hole array compaction.
func (l *Logger) LogHoleCompact(before, after int) {
	l.Debug("holes compacted",
		"slots_before", before,
		"slots_after", after,
		"reclaimed", before-after,
	)
}

// LogSnapshot logs a snapshot encode ("encode") or decode ("decode").
func (l *Logger) LogSnapshot(op string, n int, err error) {
	if err != nil {
		l.Error("snapshot failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.Debug("snapshot completed",
		"op", op,
		"bytes", n,
	)
}
