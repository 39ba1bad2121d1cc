// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build stress

package stress

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/pegasus"
	"github.com/gogpu/pegasus/schedule"
)

// =============================================================================
// Stress Tests for the double-buffered handoff
// These tests cycle the pool for a long time and check that it stays closed
// =============================================================================

type slot struct {
	id    int
	owner atomic.Int32 // 0 free, 1 painting, 2 flushing
}

type countingDevice struct {
	t        *testing.T
	created  int
	cleanups int
	ids      map[int]bool
}

func (d *countingDevice) NewEntry() (*slot, error) {
	s := &slot{id: d.created}
	d.created++
	return s, nil
}

func (d *countingDevice) Flush(s *slot) error {
	if !s.owner.CompareAndSwap(0, 2) {
		d.t.Errorf("slot %d flushed while owned by %d", s.id, s.owner.Load())
	}
	s.owner.Store(0)
	return nil
}

func (d *countingDevice) Cleanup() { d.cleanups++ }

func (d *countingDevice) DestroyEntry(s *slot) { d.ids[s.id] = true }

type sim struct {
	ticks atomic.Int64
}

func start(pl *schedule.Planner[*sim]) (*sim, *schedule.Planner[*sim]) {
	tick := schedule.SystemFunc[*sim](func(s *sim) { s.ticks.Add(1) })
	return &sim{}, pl.Add(tick, "tick").Add(tick, "tock", "tick")
}

func paint(t *testing.T) func(*sim, *slot) {
	return func(_ *sim, s *slot) {
		if !s.owner.CompareAndSwap(0, 1) {
			t.Errorf("slot %d painted while owned by %d", s.id, s.owner.Load())
		}
		runtime.Gosched()
		s.owner.Store(0)
	}
}

// TestStress100kCycles presents 100k frames and checks the census.
func TestStress100kCycles(t *testing.T) {
	const cycles = 100_000

	dev := &countingDevice{t: t, ids: make(map[int]bool)}
	p, err := pegasus.New(dev, pegasus.Init[*sim]{Start: start}, paint(t), pegasus.WithWorkers(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := range cycles {
		sw, err := p.Swing()
		if err != nil {
			t.Fatalf("Swing #%d: %v", i, err)
		}
		sw.Release()

		if i%10_000 == 0 {
			st := p.Stats()
			if st.Recorded < st.Presented || st.Recorded > st.Presented+pegasus.PoolSize {
				t.Fatalf("lag out of bounds: %+v", st)
			}
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if dev.created != pegasus.PoolSize {
		t.Errorf("created %d entries, want %d", dev.created, pegasus.PoolSize)
	}
	if len(dev.ids) != pegasus.PoolSize {
		t.Errorf("destroyed %d distinct entries, want %d", len(dev.ids), pegasus.PoolSize)
	}
	if dev.cleanups != cycles {
		t.Errorf("cleanups = %d, want %d", dev.cleanups, cycles)
	}
}

// TestStressStartStop builds and tears down many pipelines, stopping from
// both sides.
func TestStressStartStop(t *testing.T) {
	for i := range 1000 {
		dev := &countingDevice{t: t, ids: make(map[int]bool)}
		limit := int64(i % 7)
		p, err := pegasus.New(dev, pegasus.Init[*sim]{
			Start: start,
			Proceed: func(s *sim, _ time.Duration) bool {
				return i%2 == 0 || s.ticks.Load() < 2*limit
			},
		}, paint(t))
		if err != nil {
			t.Fatalf("New #%d: %v", i, err)
		}

		for range i % 5 {
			sw, err := p.Swing()
			if errors.Is(err, pegasus.ErrStopped) {
				break
			}
			if err != nil {
				t.Fatalf("Swing: %v", err)
			}
			sw.Release()
		}

		if err := p.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i, err)
		}
		if len(dev.ids) != pegasus.PoolSize {
			t.Fatalf("pipeline %d destroyed %d entries, want %d", i, len(dev.ids), pegasus.PoolSize)
		}
	}
}
