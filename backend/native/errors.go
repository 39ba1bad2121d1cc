// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

var (
	// ErrNilDevice is returned when a nil hal.Device or hal.Queue is given.
	ErrNilDevice = errors.New("native: nil device or queue")

	// ErrNoHALProvider is returned by NewFromProvider when the provider
	// does not expose HAL types.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL types")

	// ErrBackendUnavailable is returned by Open when the Vulkan backend is
	// not registered.
	ErrBackendUnavailable = errors.New("native: vulkan backend not available")

	// ErrNoAdapter is returned by Open when no GPU adapter was found.
	ErrNoAdapter = errors.New("native: no GPU adapters found")

	// ErrNotRecording is returned by Flush for an encoder that is not
	// recording, typically because restarting it failed.
	ErrNotRecording = errors.New("native: encoder is not recording")

	// ErrEncoderDestroyed is returned when a destroyed encoder is used.
	ErrEncoderDestroyed = errors.New("native: encoder destroyed")

	// ErrClosed is returned when a closed Device is used.
	ErrClosed = errors.New("native: device closed")
)
