package pegasus

import (
	"github.com/gogpu/pegasus/internal/handoff"
	"github.com/gogpu/pegasus/schedule"
)

// drawSystem returns the unit that moves one entry from the available queue
// through paint into the ready queue.
//
// A closed available queue means the presenter is gone: the unit marks the
// pipeline draining and skips painting. A failed send parks the entry.
func drawSystem[S, E any](end handoff.End[E], paint func(S, E), sh *shared[E]) schedule.SystemFunc[S] {
	return func(shell S) {
		entry, err := end.Recv.Recv()
		if err != nil {
			sh.draining.Store(true)
			return
		}

		paint(shell, entry)
		sh.recorded.Add(1)

		if err := end.Send.Send(entry); err != nil {
			sh.orphan(entry)
			sh.draining.Store(true)
		}
	}
}
