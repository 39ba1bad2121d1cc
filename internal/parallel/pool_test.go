package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		pool := NewPool(n)
		if got, want := pool.Workers(), runtime.GOMAXPROCS(0); got != want {
			t.Errorf("NewPool(%d).Workers() = %d, want %d", n, got, want)
		}
		pool.Close()
	}
}

func TestPool_Run(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var counter atomic.Int64
	batch := make([]func(), 100)
	for i := range batch {
		batch[i] = func() { counter.Add(1) }
	}

	pool.Run(batch)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestPool_RunIsConcurrent(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	// Both units must be running at once for either to finish.
	var ready sync.WaitGroup
	ready.Add(2)
	unit := func() {
		ready.Done()
		ready.Wait()
	}

	finished := make(chan struct{})
	go func() {
		pool.Run([]func(){unit, unit})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("units of one batch did not run concurrently")
	}
}

func TestPool_RunEmpty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	pool.Run(nil)
	pool.Run([]func(){})
}

func TestPool_RunAfterClose(t *testing.T) {
	pool := NewPool(2)
	pool.Close()

	if pool.IsRunning() {
		t.Error("pool should not be running after Close")
	}

	var counter int
	pool.Run([]func(){func() { counter++ }, func() { counter++ }})
	if counter != 2 {
		t.Errorf("counter = %d, want 2 (sequential fallback)", counter)
	}
}

func TestPool_CloseIdempotent(t *testing.T) {
	pool := NewPool(3)
	pool.Close()
	pool.Close()
}
