// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native_test

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/pegasus"
	"github.com/gogpu/pegasus/backend/native"
	"github.com/gogpu/pegasus/schedule"
)

type world struct {
	frame int
}

func TestPipelineOnNoopDevice(t *testing.T) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer openDev.Device.Destroy()

	dev, err := native.New(openDev.Device, openDev.Queue)
	if err != nil {
		t.Fatalf("native.New: %v", err)
	}

	p, err := pegasus.New(dev, pegasus.Init[*world]{
		Start: func(pl *schedule.Planner[*world]) (*world, *schedule.Planner[*world]) {
			return &world{}, pl
		},
	}, func(w *world, e *native.Encoder) {
		if e.State() != native.EncoderRecording {
			t.Errorf("painted encoder in state %v", e.State())
		}
		w.frame++
	})
	if err != nil {
		t.Fatalf("pegasus.New: %v", err)
	}

	const frames = 50
	for i := range frames {
		sw, err := p.Swing()
		if err != nil {
			t.Fatalf("Swing #%d: %v", i, err)
		}
		if dev.Pending() != 1 {
			t.Errorf("Pending() before release = %d, want 1", dev.Pending())
		}
		sw.Release()
		if dev.Pending() != 0 {
			t.Errorf("Pending() after release = %d, want 0", dev.Pending())
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("device Close: %v", err)
	}
	if got := p.Stats().Presented; got != frames {
		t.Errorf("presented = %d, want %d", got, frames)
	}
}
