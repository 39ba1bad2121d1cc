// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend for Open.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Open creates a standalone Vulkan device, preferring a discrete or
// integrated GPU. Close destroys it.
func Open(opts ...Option) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrBackendUnavailable
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	d, name, err := openAdapter(instance, opts)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	slogger().Info("native: GPU initialized", "adapter", name)
	return d, nil
}

// openAdapter opens the preferred adapter of instance. The returned device
// owns instance.
func openAdapter(instance hal.Instance, opts []Option) (*Device, string, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, "", ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, "", fmt.Errorf("native: open device: %w", err)
	}

	d, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		return nil, "", err
	}
	d.instance = instance
	d.owned = true
	return d, selected.Info.Name, nil
}
