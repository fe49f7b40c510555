// Package logutil holds the process-wide structured logger shared by the
// winograd packages.
package logutil

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// Logger returns the current logger, falling back to slog.Default.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the process logger. Passing nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}
