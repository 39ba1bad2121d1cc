package pegasus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/pegasus/internal/handoff"
)

// Swing is an in-flight submission. Release runs the device cleanup.
//
// Release is safe to call more than once and from any goroutine; the
// cleanup runs exactly once. A nil *Swing is valid and Release on it is a
// no-op.
type Swing struct {
	once    sync.Once
	release func()
}

// Release ends the submission and runs Device.Cleanup.
func (s *Swing) Release() {
	if s == nil {
		return
	}
	s.once.Do(s.release)
}

func (p *Pegasus[E, D]) newSwing() *Swing {
	sw := &Swing{}
	sw.release = func() {
		defer func() {
			p.inflight.CompareAndSwap(sw, nil)
			p.presenting.Store(false)
		}()
		p.device.Cleanup()
		p.sh.cleanups.Add(1)
	}
	return sw
}

// Swing presents one frame. It blocks until the loop has recorded an entry,
// flushes it to the device and hands it back for recording.
//
// On success the returned Swing must be released, typically with defer,
// before the next call. Swing returns ErrSwingInFlight while the previous
// handle is unreleased and ErrStopped once no frame will ever arrive; the
// caller should then stop presenting.
//
// If Flush fails the entry still returns to the recorder, the cleanup runs,
// and the error is returned wrapped in ErrFlush.
func (p *Pegasus[E, D]) Swing() (*Swing, error) {
	return p.SwingContext(context.Background())
}

// SwingContext is like Swing but stops waiting for a recorded entry when
// ctx is done. In that case ctx.Err() is returned and nothing is consumed.
func (p *Pegasus[E, D]) SwingContext(ctx context.Context) (*Swing, error) {
	if p.closed.Load() {
		return nil, ErrStopped
	}
	if !p.presenting.CompareAndSwap(false, true) {
		return nil, ErrSwingInFlight
	}
	p.presentMu.Lock()
	defer p.presentMu.Unlock()

	entry, err := p.present.Recv.RecvContext(ctx)
	if err != nil {
		p.presenting.Store(false)
		if errors.Is(err, handoff.ErrClosed) {
			p.sh.draining.Store(true)
			return nil, ErrStopped
		}
		return nil, err
	}

	sw := p.newSwing()
	handed := false
	defer func() {
		if !handed {
			sw.Release()
		}
	}()

	ferr := p.device.Flush(entry)
	if ferr != nil {
		Logger().Warn("pegasus: flush failed", "err", ferr)
	}

	if err := p.present.Send.Send(entry); err != nil {
		p.sh.orphan(entry)
		p.sh.draining.Store(true)
		return nil, ErrStopped
	}
	if ferr != nil {
		return nil, fmt.Errorf("%w: %w", ErrFlush, ferr)
	}

	p.sh.presented.Add(1)
	p.inflight.Store(sw)
	handed = true
	return sw, nil
}

// Present runs fn between Swing and the release of the returned handle.
// The cleanup runs on every exit path of fn, including a panic.
func (p *Pegasus[E, D]) Present(fn func() error) error {
	sw, err := p.Swing()
	if err != nil {
		return err
	}
	defer sw.Release()
	if fn == nil {
		return nil
	}
	return fn()
}
