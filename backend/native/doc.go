// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements a pegasus device over github.com/gogpu/wgpu/hal.
//
// Entries are hal command encoders. Flush ends the recording, submits the
// command buffer and starts recording again, so the encoder returns to the
// loop immediately. Cleanup, run when the host releases the Swing, polls the
// queue and frees the command buffers of completed submissions without
// blocking. Close waits for the device to go idle.
//
//	dev, err := native.Open()
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	p, err := pegasus.New(dev, setup, func(w *World, e *native.Encoder) {
//	    pass := e.Raw().BeginRenderPass(...)
//	    ...
//	})
//
// To share a device with a gogpu window, use NewFromProvider.
package native
