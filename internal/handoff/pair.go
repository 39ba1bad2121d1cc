package handoff

import "fmt"

// End is one side of a Pair: it receives from one queue and sends into the
// other. The two ends of a Pair form a closed loop.
type End[T any] struct {
	Recv *Receiver[T]
	Send *Sender[T]
}

// Close drops both halves of the end. The peer observes ErrClosed on its
// next Recv once the queue empties, and on its next Send immediately.
func (e End[T]) Close() {
	e.Send.Close()
	e.Recv.Close()
}

// NewPair creates the two queues of a handoff loop and seeds the queue
// feeding the first end with n values produced by seed.
//
// The first returned end (the consumer of seeded values) receives from the
// seeded queue and sends into the other one; the second end does the reverse.
// If seed fails, both queues are closed, the values seeded so far are
// passed to discard (when non-nil), and the error is returned.
func NewPair[T any](n int, seed func(i int) (T, error), discard func(T)) (first, second End[T], err error) {
	toFirstTx, toFirstRx := New[T]()
	toSecondTx, toSecondRx := New[T]()

	first = End[T]{Recv: toFirstRx, Send: toSecondTx}
	second = End[T]{Recv: toSecondRx, Send: toFirstTx}

	for i := range n {
		v, serr := seed(i)
		if serr != nil {
			first.Close()
			second.Close()
			if discard != nil {
				for _, left := range toFirstRx.Drain() {
					discard(left)
				}
			}
			return End[T]{}, End[T]{}, fmt.Errorf("handoff: seed entry %d: %w", i, serr)
		}
		// Cannot fail: the receiver is still open.
		_ = toFirstTx.Send(v)
	}
	return first, second, nil
}
