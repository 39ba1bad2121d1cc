package schedule

import "github.com/gogpu/pegasus/internal/parallel"

// BuildOption configures a Dispatcher.
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers int
}

func defaultBuildOptions() buildOptions {
	return buildOptions{workers: 1}
}

// WithWorkers sets how many goroutines run the units of one stage.
// Values below 2 run every unit on the goroutine calling Dispatch.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		o.workers = n
	}
}

// Dispatcher runs the stages of a built plan.
//
// Dispatch must not be called concurrently with itself or with Close.
type Dispatcher[W any] struct {
	stages [][]unit[W]
	pool   *parallel.Pool
}

func newDispatcher[W any](stages [][]unit[W], o buildOptions) *Dispatcher[W] {
	d := &Dispatcher[W]{stages: stages}
	if o.workers > 1 {
		d.pool = parallel.NewPool(o.workers)
	}
	return d
}

// Dispatch runs every unit once, stage by stage.
func (d *Dispatcher[W]) Dispatch(w W) {
	for _, stage := range d.stages {
		if d.pool == nil || len(stage) == 1 {
			for _, u := range stage {
				u.sys.Run(w)
			}
			continue
		}
		batch := make([]func(), len(stage))
		for i, u := range stage {
			sys := u.sys
			batch[i] = func() { sys.Run(w) }
		}
		d.pool.Run(batch)
	}
}

// Stages returns the unit names of each stage in execution order.
func (d *Dispatcher[W]) Stages() [][]string {
	out := make([][]string, len(d.stages))
	for i, stage := range d.stages {
		names := make([]string, len(stage))
		for j, u := range stage {
			names[j] = u.name
		}
		out[i] = names
	}
	return out
}

// Close stops the worker goroutines, if any. Close is idempotent.
func (d *Dispatcher[W]) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}
