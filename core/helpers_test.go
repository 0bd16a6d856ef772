// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"github.com/devblok/gsvk/device"
	"github.com/devblok/gsvk/device/devicetest"
)

const megabyte = 1000000

func adapterInfo(vendor, dev uint32, t device.DeviceType, dim uint32, localMB uint64) device.PhysicalDeviceInfo {
	info := device.PhysicalDeviceInfo{
		VendorID:            vendor,
		DeviceID:            dev,
		Name:                "adapter",
		Type:                t,
		MaxImageDimension2D: dim,
	}
	if localMB > 0 {
		info.MemoryHeaps = append(info.MemoryHeaps, device.MemoryHeap{Size: localMB * megabyte, DeviceLocal: true})
	}
	return info
}

// discrete is a single family adapter serving graphics and presentation
func discrete() devicetest.Adapter {
	return devicetest.Adapter{
		Info:       adapterInfo(0x10DE, 0x1B80, device.DeviceTypeDiscreteGPU, 16384, 8000),
		Families:   []device.QueueFamilyProperties{{Flags: device.QueueGraphics | device.QueueCompute, Count: 16}},
		Present:    []bool{true},
		Extensions: []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"},
	}
}

// integrated presents from a different family than it renders on
func integrated() devicetest.Adapter {
	return devicetest.Adapter{
		Info: adapterInfo(0x8086, 0x5912, device.DeviceTypeIntegratedGPU, 8192, 0),
		Families: []device.QueueFamilyProperties{
			{Flags: device.QueueTransfer, Count: 1},
			{Flags: device.QueueGraphics, Count: 1},
			{Flags: device.QueueCompute, Count: 1},
		},
		Present:    []bool{false, false, true},
		Extensions: []string{"VK_KHR_swapchain"},
	}
}

func newDriver(adapters ...devicetest.Adapter) *devicetest.Driver {
	drv := devicetest.New(adapters...)
	drv.Extensions = []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}
	drv.Layers = []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_api_dump"}
	return drv
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
