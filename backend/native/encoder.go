// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// EncoderState is the state of an Encoder.
type EncoderState int

const (
	// EncoderIdle means the encoder is not recording.
	EncoderIdle EncoderState = iota

	// EncoderRecording means commands may be recorded through Raw.
	EncoderRecording

	// EncoderDestroyed means the encoder was destroyed with its device.
	EncoderDestroyed
)

// String returns the state name.
func (s EncoderState) String() string {
	switch s {
	case EncoderIdle:
		return "Idle"
	case EncoderRecording:
		return "Recording"
	case EncoderDestroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("EncoderState(%d)", int(s))
	}
}

// Encoder is one pool entry: a hal command encoder that is always recording
// while it is handed to the paint function.
type Encoder struct {
	raw   hal.CommandEncoder
	label string
	state EncoderState
	frame uint64
}

// Raw returns the underlying command encoder. Painters record render and
// compute passes into it. It must not be retained after painting.
func (e *Encoder) Raw() hal.CommandEncoder {
	return e.raw
}

// Label returns the debug label of the encoder.
func (e *Encoder) Label() string {
	return e.label
}

// State returns the current encoder state.
func (e *Encoder) State() EncoderState {
	return e.state
}

// Frame returns the number of times the encoder was submitted.
func (e *Encoder) Frame() uint64 {
	return e.frame
}

func (e *Encoder) begin() error {
	if e.state == EncoderDestroyed {
		return ErrEncoderDestroyed
	}
	if err := e.raw.BeginEncoding(e.label); err != nil {
		e.state = EncoderIdle
		return fmt.Errorf("native: begin encoding %q: %w", e.label, err)
	}
	e.state = EncoderRecording
	return nil
}
