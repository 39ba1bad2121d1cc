package pegasus

import (
	"slices"
	"time"
)

// Option configures a pipeline during creation.
//
// Example:
//
//	p, err := pegasus.New(dev, setup, paint,
//	    pegasus.WithDrawReads("camera", "sprites"),
//	    pegasus.WithWorkers(4))
type Option func(*options)

// options holds optional configuration for New.
type options struct {
	drawReads    []string
	workers      int
	lockOSThread bool
	clock        func() time.Time
}

// defaultOptions returns the default pipeline options.
func defaultOptions() options {
	return options{
		workers:      1,
		lockOSThread: true,
		clock:        time.Now,
	}
}

// WithDrawReads declares the data the paint function reads, by the names
// other scheduled units use in their schedule.Access. Units writing any of
// these names never run concurrently with the draw unit.
func WithDrawReads(names ...string) Option {
	return func(o *options) {
		o.drawReads = slices.Clone(names)
	}
}

// WithWorkers sets how many goroutines the scheduler may use for units of
// the same stage. The default of 1 runs every unit on the loop goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLockOSThread controls whether the loop goroutine is wired to its own
// OS thread for its whole lifetime. Enabled by default.
func WithLockOSThread(lock bool) Option {
	return func(o *options) {
		o.lockOSThread = lock
	}
}

// WithClock replaces the wall clock used to measure the delta between loop
// iterations. A nil clock is ignored.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}
