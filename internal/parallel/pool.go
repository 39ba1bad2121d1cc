// Package parallel runs batches of independent units on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines, each with its own queue.
// A batch submitted with Run is spread round-robin over the workers and Run
// returns once every unit of the batch has finished.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int

	// queues holds one work queue per worker.
	queues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to exit.
	wg sync.WaitGroup

	// running reports whether the pool accepts work.
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), 4)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(p.queues[i])
	}
	return p
}

func (p *Pool) worker(queue chan func()) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain remaining work before exiting.
			for {
				select {
				case work := <-queue:
					work()
				default:
					return
				}
			}
		case work := <-queue:
			work()
		}
	}
}

// Run executes every unit of the batch and waits for all of them.
// A single-unit batch runs on the calling goroutine. If the pool is closed,
// the batch runs sequentially on the calling goroutine.
func (p *Pool) Run(batch []func()) {
	switch {
	case len(batch) == 0:
		return
	case len(batch) == 1 || !p.running.Load():
		for _, fn := range batch {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(batch))
	for i, fn := range batch {
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// Close stops the workers after their queued work completes.
// Close must not race with Run; it is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
