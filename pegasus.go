package pegasus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/pegasus/internal/handoff"
)

// PoolSize is the number of entries circulating in every pipeline.
const PoolSize = 2

// DrawName is the unit name the draw step is registered under. User units
// may depend on it or be depended on by it.
const DrawName = "draw"

// State is the lifecycle state of a pipeline.
type State int32

const (
	// StateRunning means both sides are looping.
	StateRunning State = iota

	// StateDraining means one side has exited; in-flight entries finish
	// their current step.
	StateDraining

	// StateStopped means Close has joined the loop and destroyed the pool.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats holds pipeline counters.
type Stats struct {
	// Iterations counts loop iterations that dispatched the schedule.
	Iterations uint64

	// Recorded counts entries handed to the paint function.
	Recorded uint64

	// Presented counts successful Swing calls.
	Presented uint64

	// Cleanups counts Device.Cleanup calls.
	Cleanups uint64
}

// shared is the state touched by both goroutines that does not depend on
// the device type.
type shared[E any] struct {
	iterations atomic.Uint64
	recorded   atomic.Uint64
	presented  atomic.Uint64
	cleanups   atomic.Uint64

	draining atomic.Bool

	mu      sync.Mutex
	orphans []E

	// shellErr is written by the loop goroutine before done is closed.
	shellErr error
}

// orphan parks an entry whose send failed so that Close can destroy it.
func (s *shared[E]) orphan(e E) {
	s.mu.Lock()
	s.orphans = append(s.orphans, e)
	s.mu.Unlock()
	Logger().Debug("pegasus: entry parked during shutdown")
}

func (s *shared[E]) takeOrphans() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.orphans
	s.orphans = nil
	return out
}

// Pegasus is a running pipeline. The host drives it by calling Swing once
// per displayed frame.
//
// Swing, SwingContext and Present are meant for a single presenting
// goroutine. Close, Done, State, Stats and Device are safe for concurrent use.
type Pegasus[E any, D Device[E]] struct {
	device D
	sh     *shared[E]

	// present receives ready entries and returns them to the recorder.
	present handoff.End[E]
	// recorder is the loop's end, kept for draining at Close.
	recorder handoff.End[E]

	done   chan struct{}
	detach func()

	presenting atomic.Bool
	presentMu  sync.Mutex
	inflight   atomic.Pointer[Swing]

	closed    atomic.Bool
	stopped   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates the pool of PoolSize entries on device and starts the loop
// goroutine.
//
// The draw unit is registered in the planner under DrawName before
// setup.Start runs on the loop goroutine. New returns after Start and the
// schedule build have completed; their errors are returned here.
// paint receives the shell and one entry per loop iteration and must not
// retain the entry after it returns.
func New[S, E any, D Device[E]](device D, setup Init[S], paint func(shell S, entry E), opts ...Option) (*Pegasus[E, D], error) {
	if setup.Start == nil {
		return nil, ErrNilStart
	}
	if paint == nil {
		return nil, ErrNilPaint
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	detach := attachLogger(device)

	recorder, present, err := handoff.NewPair(PoolSize,
		func(int) (E, error) { return device.NewEntry() },
		func(e E) { destroyEntry(device, e) })
	if err != nil {
		detach()
		return nil, fmt.Errorf("pegasus: create pool: %w", err)
	}
	Logger().Debug("pegasus: pool seeded", "entries", PoolSize)

	p := &Pegasus[E, D]{
		device:   device,
		sh:       &shared[E]{},
		present:  present,
		recorder: recorder,
		done:     make(chan struct{}),
		detach:   detach,
	}

	a := &app[S, E]{
		setup: setup,
		paint: paint,
		end:   recorder,
		sh:    p.sh,
		opts:  o,
		done:  p.done,
	}
	ready := make(chan error, 1)
	go a.run(ready)

	if err := <-ready; err != nil {
		p.present.Close()
		<-p.done
		p.destroyPool()
		detach()
		return nil, err
	}
	return p, nil
}

// Device returns the device the pipeline submits to. The host must not use
// it concurrently with Swing or an unreleased Swing handle.
func (p *Pegasus[E, D]) Device() D {
	return p.device
}

// Done returns a channel that is closed when the loop goroutine has exited.
func (p *Pegasus[E, D]) Done() <-chan struct{} {
	return p.done
}

// State returns the current lifecycle state.
func (p *Pegasus[E, D]) State() State {
	switch {
	case p.stopped.Load():
		return StateStopped
	case p.sh.draining.Load():
		return StateDraining
	default:
		return StateRunning
	}
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pegasus[E, D]) Stats() Stats {
	return Stats{
		Iterations: p.sh.iterations.Load(),
		Recorded:   p.sh.recorded.Load(),
		Presented:  p.sh.presented.Load(),
		Cleanups:   p.sh.cleanups.Load(),
	}
}

// Close drops the presenting side, waits for the loop goroutine to exit and
// destroys every entry of the pool. An unreleased Swing is released first.
//
// Close returns the error of closing the shell, if the shell implements
// io.Closer and closing it failed. Close is idempotent; later calls return
// the same error.
func (p *Pegasus[E, D]) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.sh.draining.Store(true)
		p.present.Close()

		p.presentMu.Lock()
		if sw := p.inflight.Load(); sw != nil {
			sw.Release()
		}
		p.presentMu.Unlock()

		<-p.done
		n := p.destroyPool()
		p.detach()
		p.stopped.Store(true)
		p.closeErr = p.sh.shellErr

		Logger().Info("pegasus: pipeline stopped",
			"presented", p.sh.presented.Load(),
			"recorded", p.sh.recorded.Load(),
			"destroyed", n)
	})
	return p.closeErr
}

// destroyPool destroys queued and parked entries. The loop goroutine must
// have exited and no Swing may be running.
func (p *Pegasus[E, D]) destroyPool() int {
	var entries []E
	entries = append(entries, p.recorder.Recv.Drain()...)
	entries = append(entries, p.present.Recv.Drain()...)
	entries = append(entries, p.sh.takeOrphans()...)
	for _, e := range entries {
		destroyEntry(p.device, e)
	}
	return len(entries)
}
