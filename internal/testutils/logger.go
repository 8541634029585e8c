// Package testutils holds helpers shared by tests across packages. It
// imports "testing" and must never be imported by production code.
package testutils

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Logger returns a DEBUG text logger whose output goes to t.Log, so it
// only shows up for failing tests or with -v.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// LogEntry is a captured log record: its level, message and attributes.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a memory-backed slog.Handler for asserting on log output.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
	attrs   []slog.Attr
	root    *LogRecorder
}

// NewLogRecorder returns an empty recorder and a logger that writes to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	rec := &LogRecorder{}
	rec.root = rec
	return rec, slog.New(rec)
}

// Enabled satisfies slog.Handler.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle satisfies slog.Handler.
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		entry.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.root.mu.Lock()
	defer h.root.mu.Unlock()
	h.root.entries = append(h.root.entries, entry)
	return nil
}

// WithAttrs satisfies slog.Handler. Groups are flattened.
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &LogRecorder{attrs: merged, root: h.root}
}

// WithGroup satisfies slog.Handler.
func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of every record captured so far.
func (h *LogRecorder) Entries() []LogEntry {
	h.root.mu.Lock()
	defer h.root.mu.Unlock()
	return append([]LogEntry(nil), h.root.entries...)
}
