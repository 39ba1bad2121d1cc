package pegasus

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/gogpu/pegasus/internal/handoff"
	"github.com/gogpu/pegasus/schedule"
)

// Init is the user initialization of a pipeline. S is the shell: the
// simulation state owned by the loop goroutine.
type Init[S any] struct {
	// Start runs once on the loop goroutine. It receives a planner with the
	// draw unit already registered, adds its own units, and returns the
	// shell with the planner to build.
	Start func(planner *schedule.Planner[S]) (S, *schedule.Planner[S])

	// Proceed runs before every iteration with the wall-clock time elapsed
	// since the previous one. Returning false stops the loop. A nil Proceed
	// always continues.
	Proceed func(shell S, delta time.Duration) bool
}

// app is the loop side of a pipeline.
type app[S, E any] struct {
	setup Init[S]
	paint func(S, E)
	end   handoff.End[E]
	sh    *shared[E]
	opts  options
	done  chan struct{}
}

// start runs Init.Start and builds the schedule.
func (a *app[S, E]) start() (S, *schedule.Dispatcher[S], error) {
	planner := schedule.NewPlanner[S]()
	planner.AddWithAccess(drawSystem(a.end, a.paint, a.sh), DrawName, schedule.Access{Reads: a.opts.drawReads})

	shell, planner := a.setup.Start(planner)
	if planner == nil {
		a.closeShell(shell)
		return shell, nil, ErrNilPlanner
	}
	dispatcher, err := planner.Build(schedule.WithWorkers(a.opts.workers))
	if err != nil {
		a.closeShell(shell)
		return shell, nil, fmt.Errorf("pegasus: build schedule: %w", err)
	}
	return shell, dispatcher, nil
}

// run is the body of the loop goroutine. The startup result is sent on
// ready before the first iteration.
func (a *app[S, E]) run(ready chan<- error) {
	defer close(a.done)
	if a.opts.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	shell, dispatcher, err := a.start()
	if err != nil {
		a.end.Close()
		ready <- err
		return
	}
	ready <- nil

	log := Logger()
	log.Debug("pegasus: loop started", "stages", dispatcher.Stages())

	last := a.opts.clock()
	for {
		now := a.opts.clock()
		delta := now.Sub(last)
		last = now

		if a.sh.draining.Load() {
			break
		}
		if a.setup.Proceed != nil && !a.setup.Proceed(shell, delta) {
			a.sh.draining.Store(true)
			break
		}
		a.sh.iterations.Add(1)
		dispatcher.Dispatch(shell)
	}

	a.end.Close()
	dispatcher.Close()
	a.closeShell(shell)
	log.Debug("pegasus: loop exited", "iterations", a.sh.iterations.Load())
}

// closeShell closes a shell that implements io.Closer and keeps the error
// for Close.
func (a *app[S, E]) closeShell(shell S) {
	c, ok := any(shell).(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		Logger().Warn("pegasus: shell close failed", "err", err)
		a.sh.shellErr = err
	}
}
