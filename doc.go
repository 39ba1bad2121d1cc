// Package pegasus decouples a simulation loop from GPU command submission
// with a double-buffered handoff of command-recording entries.
//
// # Overview
//
// A pipeline owns exactly two entries (PoolSize). They circulate through two
// handoff queues between a background loop goroutine and the host:
//
//	host (Swing) --available--> loop (draw unit) --ready--> host (Swing)
//
// While the host submits frame N, the loop records frame N+1 into the other
// entry. Ownership moves with the entry, so no lock guards its content.
//
// # Quick Start
//
//	p, err := pegasus.New(device, pegasus.Init[*World]{
//	    Start: func(pl *schedule.Planner[*World]) (*World, *schedule.Planner[*World]) {
//	        pl.Add(schedule.SystemFunc[*World](physics), "physics")
//	        return newWorld(), pl
//	    },
//	    Proceed: func(w *World, dt time.Duration) bool { return !w.Quit },
//	}, func(w *World, c *software.Canvas) {
//	    c.ClearWithColor(gg.Black)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	for {
//	    sw, err := p.Swing()
//	    if err != nil {
//	        break // ErrStopped: the loop has exited
//	    }
//	    // The submission is in flight until Release runs the device cleanup.
//	    sw.Release()
//	}
//
// # Lifecycle
//
// A pipeline is Running until either the Proceed predicate returns false or
// the host calls Close. It is then Draining: entries already in flight finish
// their current step and Swing reports ErrStopped. Close joins the loop
// goroutine, destroys both entries and leaves the pipeline Stopped. There is
// no restart; build a new pipeline instead.
//
// # Devices
//
// The backend/native package submits hal command encoders from
// github.com/gogpu/wgpu. The backend/software package plays gg recordings
// back on the CPU.
package pegasus
