package pegasus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// sinks holds the devices of open pipelines that want logger updates.
var (
	sinksMu  sync.Mutex
	sinks    = make(map[uint64]loggerSetter)
	sinkNext uint64
)

// SetLogger configures the logger for pegasus and the devices of every open
// pipeline. By default, pegasus produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by pegasus:
//   - [slog.LevelDebug]: pool seeding, loop start and exit, parked entries
//   - [slog.LevelInfo]: pipeline stopped
//   - [slog.LevelWarn]: flush failures, shell close errors, GPU wait failures
//
// Example:
//
//	pegasus.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.Lock()
	defer sinksMu.Unlock()
	for _, s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger used by pegasus.
// Device packages call this to share the same logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// attachLogger hands the current logger to d if it accepts one and keeps it
// updated until the returned detach function is called.
func attachLogger(d any) (detach func()) {
	ls, ok := d.(loggerSetter)
	if !ok {
		return func() {}
	}
	sinksMu.Lock()
	sinkNext++
	id := sinkNext
	sinks[id] = ls
	ls.SetLogger(Logger())
	sinksMu.Unlock()
	return func() {
		sinksMu.Lock()
		delete(sinks, id)
		sinksMu.Unlock()
	}
}
