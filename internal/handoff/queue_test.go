package handoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestQueue_FIFO(t *testing.T) {
	tx, rx := New[int]()
	for i := range 10 {
		if err := tx.Send(i); err != nil {
			t.Fatalf("Send(%d) = %v", i, err)
		}
	}
	if rx.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", rx.Len())
	}
	for i := range 10 {
		got, err := rx.Recv()
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if got != i {
			t.Errorf("Recv() = %d, want %d", got, i)
		}
	}
}

func TestQueue_RecvBlocksUntilSend(t *testing.T) {
	tx, rx := New[string]()

	got := make(chan string, 1)
	go func() {
		v, err := rx.Recv()
		if err != nil {
			t.Errorf("Recv() error = %v", err)
		}
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("Recv returned %q before any send", v)
	case <-time.After(20 * time.Millisecond):
	}

	if err := tx.Send("frame"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case v := <-got:
		if v != "frame" {
			t.Errorf("Recv() = %q, want %q", v, "frame")
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not wake up after Send")
	}
}

func TestQueue_RecvAfterLastSenderClosed(t *testing.T) {
	tx, rx := New[int]()
	_ = tx.Send(7)
	tx.Close()

	// Queued values are delivered before closure is reported.
	v, err := rx.Recv()
	if err != nil || v != 7 {
		t.Fatalf("Recv() = (%d, %v), want (7, nil)", v, err)
	}
	if _, err := rx.Recv(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Recv() error = %v, want ErrClosed", err)
	}
}

func TestQueue_CloseWakesBlockedReceiver(t *testing.T) {
	tx, rx := New[int]()

	done := make(chan error, 1)
	go func() {
		_, err := rx.Recv()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	tx.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Recv() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Recv was not released by Close")
	}
}

func TestQueue_SendAfterReceiverClosed(t *testing.T) {
	tx, rx := New[int]()
	rx.Close()
	if err := tx.Send(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send() error = %v, want ErrClosed", err)
	}
	if rx.Len() != 0 {
		t.Errorf("Len() = %d after failed send, want 0", rx.Len())
	}
}

func TestQueue_SendOnClosedSender(t *testing.T) {
	tx, _ := New[int]()
	tx.Close()
	if err := tx.Send(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send() on closed sender error = %v, want ErrClosed", err)
	}
}

func TestQueue_CloseIdempotent(t *testing.T) {
	tx, rx := New[int]()
	clone := tx.Clone()

	tx.Close()
	tx.Close()

	// The clone keeps the queue open.
	if err := clone.Send(3); err != nil {
		t.Fatalf("clone.Send() error = %v", err)
	}
	if v, err := rx.Recv(); err != nil || v != 3 {
		t.Fatalf("Recv() = (%d, %v), want (3, nil)", v, err)
	}

	clone.Close()
	if _, err := rx.Recv(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Recv() error = %v, want ErrClosed", err)
	}

	rx.Close()
	rx.Close()
}

func TestQueue_CloneOfClosedSender(t *testing.T) {
	tx, rx := New[int]()
	tx.Close()
	c := tx.Clone()
	if err := c.Send(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() on clone of closed sender = %v, want ErrClosed", err)
	}
	c.Close()
	if _, err := rx.Recv(); !errors.Is(err, ErrClosed) {
		t.Errorf("Recv() error = %v, want ErrClosed", err)
	}
}

func TestQueue_MultiProducer(t *testing.T) {
	const producers, perProducer = 8, 500

	tx, rx := New[int]()
	var g errgroup.Group
	for p := range producers {
		s := tx.Clone()
		g.Go(func() error {
			defer s.Close()
			for i := range perProducer {
				if err := s.Send(p*perProducer + i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	tx.Close()

	seen := make(map[int]bool, producers*perProducer)
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for {
		v, err := rx.Recv()
		if errors.Is(err, ErrClosed) {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if seen[v] {
			t.Fatalf("value %d delivered twice", v)
		}
		seen[v] = true

		// Per-producer order is preserved.
		p, i := v/perProducer, v%perProducer
		if i <= last[p] {
			t.Fatalf("producer %d: got %d after %d", p, i, last[p])
		}
		last[p] = i
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("producer Send() error = %v", err)
	}

	if len(seen) != producers*perProducer {
		t.Errorf("received %d values, want %d", len(seen), producers*perProducer)
	}
}

func TestQueue_RecvContextCanceled(t *testing.T) {
	tx, rx := New[int]()
	defer tx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := rx.RecvContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RecvContext() error = %v, want DeadlineExceeded", err)
	}

	// Nothing was consumed by the canceled call.
	_ = tx.Send(5)
	if v, err := rx.Recv(); err != nil || v != 5 {
		t.Fatalf("Recv() = (%d, %v), want (5, nil)", v, err)
	}
}

func TestQueue_Drain(t *testing.T) {
	tx, rx := New[int]()
	for i := range 3 {
		_ = tx.Send(i)
	}
	rx.Close()

	got := rx.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain() returned %d values, want 3", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("Drain()[%d] = %d, want %d", i, v, i)
		}
	}
	if rest := rx.Drain(); len(rest) != 0 {
		t.Errorf("second Drain() returned %d values, want 0", len(rest))
	}
}
