// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by shaderpipe. By default nothing
// is logged. Pass nil to restore the silent default.
//
// Log levels used by shaderpipe:
//   - [slog.LevelDebug]: pass plans, LOD bias rewrites, SPIR-V disassembly
//   - [slog.LevelInfo]: final shader text when Options.PrintShaders is set
//   - [slog.LevelWarn]: optimizer warnings
//   - [slog.LevelError]: optimizer failures, malformed modules
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
