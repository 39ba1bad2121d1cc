// Package software implements a pegasus device that plays gg recordings
// back on the CPU.
//
// Entries are Canvas values wrapping a recording.Recorder, so the paint
// function uses the familiar gg drawing API. Flush rasterizes the recording
// and presents it into a target image, scaling when the sizes differ.
package software

import (
	"errors"
	"fmt"
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/recording/backends/raster"

	"github.com/gogpu/pegasus"
)

var (
	// ErrInvalidSize is returned by New for non-positive dimensions.
	ErrInvalidSize = errors.New("software: width and height must be positive")

	// ErrCanvasDestroyed is returned by Flush for a destroyed canvas.
	ErrCanvasDestroyed = errors.New("software: canvas destroyed")
)

// Canvas is one pool entry. Painters draw through the embedded Recorder.
type Canvas struct {
	*recording.Recorder

	id    int
	frame uint64
}

// ID returns the index of the canvas in its pool.
func (c *Canvas) ID() int {
	return c.id
}

// Frame returns the number of times the canvas was presented.
func (c *Canvas) Frame() uint64 {
	return c.frame
}

// Option configures a Device.
type Option func(*Device)

// WithTarget presents into img instead of an image allocated by New.
func WithTarget(img *image.RGBA) Option {
	return func(d *Device) {
		if img != nil {
			d.target = img
		}
	}
}

// WithScaler sets the interpolator used when the target size differs from
// the canvas size. The default is ApproxBiLinear from golang.org/x/image/draw.
func WithScaler(s xdraw.Scaler) Option {
	return func(d *Device) {
		if s != nil {
			d.scaler = s
		}
	}
}

// WithFrameFunc registers fn to be called from Cleanup with the frame
// number and the presented image. fn must not retain img.
func WithFrameFunc(fn func(frame uint64, img image.Image)) Option {
	return func(d *Device) {
		d.onFrame = fn
	}
}

// Device rasterizes Canvas entries into a target image.
//
// NewEntry, Flush, Cleanup and DestroyEntry follow the pegasus device
// contract. Frame and Frames are safe to call from any goroutine.
type Device struct {
	width, height int
	scaler        xdraw.Scaler
	onFrame       func(uint64, image.Image)
	entries       int

	mu       sync.Mutex
	target   *image.RGBA
	frames   uint64
	commands int
}

// New creates a Device for canvases of the given size.
func New(width, height int, opts ...Option) (*Device, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	d := &Device{
		width:  width,
		height: height,
		scaler: xdraw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.target == nil {
		d.target = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return d, nil
}

// NewEntry creates an empty canvas.
func (d *Device) NewEntry() (*Canvas, error) {
	c := &Canvas{
		Recorder: recording.NewRecorder(d.width, d.height),
		id:       d.entries,
	}
	d.entries++
	return c, nil
}

// Flush rasterizes the commands recorded into c, presents the result and
// gives c a fresh recorder.
func (d *Device) Flush(c *Canvas) error {
	if c.Recorder == nil {
		return ErrCanvasDestroyed
	}
	rec := c.FinishRecording()
	c.Recorder = recording.NewRecorder(d.width, d.height)
	c.frame++

	backend := raster.NewBackend()
	if err := rec.Playback(backend); err != nil {
		return fmt.Errorf("software: playback: %w", err)
	}

	d.mu.Lock()
	d.present(backend.Image())
	d.commands = len(rec.Commands())
	d.mu.Unlock()
	return nil
}

// present copies img into the target. Callers hold d.mu.
func (d *Device) present(img image.Image) {
	dst := d.target.Bounds()
	src := img.Bounds()
	if dst.Size() == src.Size() {
		xdraw.Draw(d.target, dst, img, src.Min, xdraw.Src)
		return
	}
	d.scaler.Scale(d.target, dst, img, src, xdraw.Src, nil)
}

// Cleanup completes the presented frame.
func (d *Device) Cleanup() {
	d.mu.Lock()
	d.frames++
	n := d.frames
	d.mu.Unlock()

	if d.onFrame != nil {
		d.onFrame(n, d.target)
	}
	pegasus.Logger().Debug("software: frame presented", "frame", n)
}

// DestroyEntry releases the recorder of c.
func (d *Device) DestroyEntry(c *Canvas) {
	c.Recorder = nil
}

// Frame returns a copy of the last presented image.
func (d *Device) Frame() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.target.Bounds()
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, d.target, b.Min, xdraw.Src)
	return out
}

// Frames returns the number of completed frames.
func (d *Device) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Commands returns the number of commands in the last flushed recording.
func (d *Device) Commands() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commands
}

// Size returns the canvas dimensions.
func (d *Device) Size() (width, height int) {
	return d.width, d.height
}
