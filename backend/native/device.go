// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DefaultLabelPrefix prefixes the hal label of every encoder entry.
const DefaultLabelPrefix = "pegasus_entry"

// submission is one flushed command buffer awaiting completion.
type submission struct {
	cmdBuf hal.CommandBuffer
	index  uint64
	label  string
}

// Device submits Encoder entries to a hal queue.
//
// Flush and Cleanup are called by the presenting goroutine only; Device is
// not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue

	pending []submission
	prefix  string
	entries int
	closed  bool

	// instance is set when the device was created by Open.
	instance hal.Instance
	owned    bool
}

// Option configures a Device.
type Option func(*Device)

// WithLabelPrefix sets the prefix of encoder labels shown in GPU debuggers.
// An empty prefix is ignored.
func WithLabelPrefix(prefix string) Option {
	return func(dev *Device) {
		if prefix != "" {
			dev.prefix = prefix
		}
	}
}

// New creates a Device submitting to queue. The device and queue stay owned
// by the caller.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	d := &Device{
		device: device,
		queue:  queue,
		prefix: DefaultLabelPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NewFromProvider creates a Device sharing the GPU of an external provider
// such as a gogpu window. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return New(device, queue, opts...)
}

// SetLogger sets the logger used by the package.
func (d *Device) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// HalDevice returns the underlying hal.Device.
func (d *Device) HalDevice() hal.Device {
	return d.device
}

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() hal.Queue {
	return d.queue
}

// Pending returns the number of submissions not yet cleaned up.
func (d *Device) Pending() int {
	return len(d.pending)
}

// NewEntry creates an encoder that is already recording.
func (d *Device) NewEntry() (*Encoder, error) {
	if d.closed {
		return nil, ErrClosed
	}
	label := fmt.Sprintf("%s_%d", d.prefix, d.entries)
	raw, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	e := &Encoder{raw: raw, label: label}
	if err := e.begin(); err != nil {
		return nil, err
	}
	d.entries++
	slogger().Debug("native: encoder created", "label", label)
	return e, nil
}

// Flush ends the recording of e, submits it and starts recording again.
// The submission completes asynchronously; Cleanup frees it once the queue
// reports it done.
func (d *Device) Flush(e *Encoder) error {
	switch {
	case d.closed:
		return ErrClosed
	case e.state == EncoderDestroyed:
		return ErrEncoderDestroyed
	case e.state != EncoderRecording:
		// A failed restart left the encoder idle; try again so the entry
		// stays usable, but nothing was recorded into it.
		if err := e.begin(); err != nil {
			return err
		}
		return ErrNotRecording
	}

	cmdBuf, err := e.raw.EndEncoding()
	if err != nil {
		e.state = EncoderIdle
		if berr := e.begin(); berr != nil {
			slogger().Warn("native: restart encoding failed", "label", e.label, "err", berr)
		}
		return fmt.Errorf("native: end encoding: %w", err)
	}
	e.state = EncoderIdle

	if err := d.submit(e.label, cmdBuf); err != nil {
		if berr := e.begin(); berr != nil {
			slogger().Warn("native: restart encoding failed", "label", e.label, "err", berr)
		}
		return err
	}
	e.frame++
	return e.begin()
}

func (d *Device) submit(label string, cmdBuf hal.CommandBuffer) error {
	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		d.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("native: submit: %w", err)
	}
	d.pending = append(d.pending, submission{cmdBuf: cmdBuf, index: idx, label: label})
	return nil
}

// Cleanup frees the command buffers of every submission the queue reports
// as completed. It never blocks; unfinished submissions stay pending until
// a later Cleanup or Close.
func (d *Device) Cleanup() {
	d.pending = d.release(d.pending, d.queue.PollCompleted())
}

// release frees submissions with an index at or below done and returns the
// rest in submission order.
func (d *Device) release(pending []submission, done uint64) []submission {
	kept := pending[:0]
	for _, s := range pending {
		if s.index > done {
			kept = append(kept, s)
			continue
		}
		d.device.FreeCommandBuffer(s.cmdBuf)
	}
	clear(pending[len(kept):])
	if n := len(kept); n > 0 {
		slogger().Debug("native: submissions in flight", "count", n, "completed", done)
	}
	return kept
}

// DestroyEntry discards any open recording of e. The encoder cannot be
// used afterwards.
func (d *Device) DestroyEntry(e *Encoder) {
	if e.state == EncoderRecording {
		e.raw.DiscardEncoding()
	}
	e.state = EncoderDestroyed
	e.raw = nil
}

// Close waits for the GPU to go idle, frees every pending command buffer
// and, for devices created by Open, destroys the hal device and instance.
// Close is idempotent.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if werr := d.device.WaitIdle(); werr != nil {
		err = fmt.Errorf("native: wait idle: %w", werr)
		slogger().Warn("native: wait idle failed", "pending", len(d.pending), "err", werr)
		// The GPU may still read unfinished buffers, so only those the
		// queue reports done are freed; the rest are leaked.
		d.release(d.pending, d.queue.PollCompleted())
	} else {
		for _, s := range d.pending {
			d.device.FreeCommandBuffer(s.cmdBuf)
		}
	}
	d.pending = nil

	if d.owned {
		d.device.Destroy()
		d.instance.Destroy()
		slogger().Info("native: device closed")
	}
	return err
}
