// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/devblok/gsvk/device"
)

// DeviceContext is a logical device with its queues. The instance and the
// physical device are borrowed, the logical device is owned.
type DeviceContext struct {
	driver device.Driver

	Instance       *Instance
	PhysicalDevice device.PhysicalDeviceInfo
	Device         device.Device
	Families       QueueFamilyIndices
	GraphicsQueue  device.Queue
	PresentQueue   device.Queue
	Extensions     []string
}

// CreateLogicalDevice creates one queue per distinct family, enables every
// extension of the physical device and the validation layers of the instance
func CreateLogicalDevice(drv device.Driver, instance *Instance, pd device.PhysicalDeviceInfo, families QueueFamilyIndices) (*DeviceContext, error) {
	if !families.Complete() {
		return nil, fmt.Errorf("vk.CreateDevice(): %w", ErrIncompleteQueueFamilies)
	}

	extensions, err := drv.DeviceExtensions(pd.Handle)
	if err != nil {
		return nil, err
	}

	var queues []device.QueueCreateInfo
	for _, family := range families.Unique() {
		queues = append(queues, device.QueueCreateInfo{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}

	dev, err := drv.CreateDevice(pd.Handle, device.DeviceCreateInfo{
		Queues:     queues,
		Extensions: extensions,
		Layers:     instance.Layers(),
	})
	if err != nil {
		return nil, err
	}

	return &DeviceContext{
		driver:         drv,
		Instance:       instance,
		PhysicalDevice: pd,
		Device:         dev,
		Families:       families,
		GraphicsQueue:  drv.DeviceQueue(dev, families.Graphics, 0),
		PresentQueue:   drv.DeviceQueue(dev, families.Present, 0),
		Extensions:     extensions,
	}, nil
}

// Driver returns the driver the device was created with
func (c *DeviceContext) Driver() device.Driver {
	return c.driver
}

// WaitIdle blocks until the device has finished all submitted work
func (c *DeviceContext) WaitIdle() error {
	if c == nil || c.Device == 0 {
		return nil
	}
	return c.driver.DeviceWaitIdle(c.Device)
}

// Destroy destroys the logical device, the instance is left alone
func (c *DeviceContext) Destroy() {
	if c == nil || c.Device == 0 {
		return
	}
	c.driver.DestroyDevice(c.Device)
	c.Device = 0
	c.GraphicsQueue, c.PresentQueue = 0, 0
}
