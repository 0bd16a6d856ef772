// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core brings up a Vulkan device for the GS renderer. It creates
// the instance, selects an adapter, resolves queue families, creates the
// logical device and keeps the presentation swapchain alive across resizes.
//
// Nothing in this package is safe for concurrent use, every value is owned
// by the thread that drives the renderer.
package core

import (
	"errors"

	"github.com/devblok/gsvk/device"
)

// Errors reported during bring-up, wrapped with context
var (
	ErrNoSuitableDevice        = errors.New("no suitable physical device")
	ErrAdapterNotFound         = errors.New("configured adapter not found")
	ErrIncompleteQueueFamilies = errors.New("graphics or present queue family missing")
	ErrNotCreated              = errors.New("device is not created")
	ErrInvalidExtent           = errors.New("width and height must be positive")
)

// Window is the windowing collaborator that owns the native window
// and knows how to create a presentation surface for it
type Window interface {
	CreateSurface(instance device.Instance) (device.Surface, error)
}

// WindowFunc adapts a function to the Window interface
type WindowFunc func(instance device.Instance) (device.Surface, error)

// CreateSurface implements Window
func (f WindowFunc) CreateSurface(instance device.Instance) (device.Surface, error) {
	return f(instance)
}
