// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"context"
	"log/slog"
	"time"
)

// mustParseTime parses an RFC3339 timestamp, panicking on failure. Used
// only to build fixed, deterministic timestamps in tests.
func mustParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// capturingHandler is a minimal [slog.Handler] that appends every record
// it receives to a slice the test can inspect afterward.
type capturingHandler struct {
	records *[]slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(name string) slog.Handler       { return h }

// newCapturingLogger returns an [SLogger] that records every emitted log
// record into the returned slice, so tests can assert on what was logged
// without depending on a specific log backend.
func newCapturingLogger() (SLogger, *[]slog.Record) {
	records := &[]slog.Record{}
	return slog.New(&capturingHandler{records: records}), records
}
