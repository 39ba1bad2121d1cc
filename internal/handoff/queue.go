// Package handoff provides the ownership-transfer queues that move pool
// entries between the recording goroutine and the presenting goroutine.
//
// A queue is unbounded, FIFO, and has any number of producers but a single
// consumer. Closure is the only shutdown signal: a receive fails once every
// producer is gone and the queue is empty, and a send fails once the
// consumer is gone.
package handoff

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Send when the receiver has been closed and by
// Recv when every sender has been closed and no values remain.
var ErrClosed = errors.New("handoff: channel closed")

// queue is the state shared by the two ends.
type queue[T any] struct {
	mu      sync.Mutex
	items   []T
	senders int

	// recvClosed is set once the consumer is gone; sends fail afterwards.
	recvClosed bool

	// notify wakes the single consumer. One slot is enough because there is
	// only ever one waiter.
	notify chan struct{}
}

func (q *queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// New creates a queue and returns its first sender and its receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{
		items:   make([]T, 0, 4),
		senders: 1,
		notify:  make(chan struct{}, 1),
	}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Sender is one producer end of a queue. Use Clone for additional producers.
//
// A Sender is safe for concurrent use.
type Sender[T any] struct {
	q      *queue[T]
	once   sync.Once
	closed bool // guarded by q.mu
}

// Send appends v to the queue. It never blocks.
// Returns ErrClosed if the receiver is gone or this sender was closed; in
// that case ownership of v stays with the caller.
func (s *Sender[T]) Send(v T) error {
	q := s.q
	q.mu.Lock()
	if q.recvClosed || s.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.wake()
	return nil
}

// Clone returns a new producer handle for the same queue.
// Cloning a closed sender returns a closed sender.
func (s *Sender[T]) Clone() *Sender[T] {
	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()
	c := &Sender[T]{q: q}
	if s.closed {
		c.closed = true
		c.once.Do(func() {})
		return c
	}
	q.senders++
	return c
}

// Close drops this producer. When the last producer is dropped a receiver
// waiting on an empty queue observes ErrClosed.
// Close is safe to call multiple times.
func (s *Sender[T]) Close() {
	s.once.Do(func() {
		q := s.q
		q.mu.Lock()
		s.closed = true
		q.senders--
		last := q.senders == 0
		q.mu.Unlock()
		if last {
			q.wake()
		}
	})
}

// Receiver is the single consumer end of a queue.
//
// Recv, RecvContext and Drain must not be called concurrently with each other.
// Len and Close are safe to call from any goroutine.
type Receiver[T any] struct {
	q    *queue[T]
	once sync.Once
}

// Recv blocks until a value is available or the queue is closed.
// Values already queued are delivered before ErrClosed is reported.
func (r *Receiver[T]) Recv() (T, error) {
	return r.RecvContext(context.Background())
}

// RecvContext is like Recv but gives up when ctx is done, returning
// ctx.Err() without consuming a value.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	q := r.q
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.senders == 0 || q.recvClosed {
			q.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued values.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Close drops the consumer. Subsequent sends fail with ErrClosed; values
// still queued remain available through Drain.
// Close is safe to call multiple times.
func (r *Receiver[T]) Close() {
	r.once.Do(func() {
		q := r.q
		q.mu.Lock()
		q.recvClosed = true
		q.mu.Unlock()
		q.wake()
	})
}

// Drain removes and returns every queued value. It does not block.
func (r *Receiver[T]) Drain() []T {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.items))
	copy(out, q.items)
	clear(q.items)
	q.items = q.items[:0]
	return out
}
