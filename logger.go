package minecart

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var (
	loggerPtr atomic.Pointer[slog.Logger]
	loggerSet atomic.Bool
)

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used by minecart and its sub-packages. Logging is
// off by default; pass nil to turn it off again. Either way app.NewRunner
// keeps the choice instead of installing its stderr logger.
//
// Levels:
//   - Debug: GPU object creation details
//   - Info: lifecycle events (device selected, swapchain created)
//   - Warn: recoverable problems and validation layer reports
//   - Error: failures caught inside the frame loop
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	loggerSet.Store(true)
}

// LoggerSet reports whether SetLogger has been called.
func LoggerSet() bool {
	return loggerSet.Load()
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
