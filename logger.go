package rendertask

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rendertask and its sub-packages.
// By default nothing is logged.
//
// Pass nil to restore the silent default.
//
// Log levels used by rendertask:
//   - [slog.LevelDebug]: cache builds, promotions and evictions, target allocation
//   - [slog.LevelWarn]: effects skipped because a cached task could not be built
//   - [slog.LevelError]: invariant violations, right before the panic
//
// Example:
//
//	rendertask.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by rendertask.
// The target and texstore packages call this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// bug reports a violated invariant. These are programming errors in the
// caller, so the frame cannot continue.
func bug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Error("rendertask: invariant violated", "reason", msg)
	panic("rendertask: " + msg)
}
