// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/devblok/gsvk/device"
)

// Fixed swapchain parameters
const (
	SwapchainMinImageCount = 2
	SwapchainFormat        = device.FormatR8G8B8A8Unorm
	SwapchainColorSpace    = device.ColorSpaceSRGBNonlinear
	SwapchainPresentMode   = device.PresentModeFIFO
)

// Swapchain manages the swapchain of a surface and one view per image.
// It is either absent or created, Create and Destroy move between the two.
type Swapchain struct {
	ctx     *DeviceContext
	surface device.Surface

	handle  device.Swapchain
	extent  device.Extent
	sharing device.SharingMode
	images  []device.Image
	views   []device.ImageView
}

// NewSwapchain returns an absent swapchain for surface
func NewSwapchain(ctx *DeviceContext, surface device.Surface) *Swapchain {
	return &Swapchain{ctx: ctx, surface: surface}
}

// Create creates the swapchain with the given extent and a view for each
// of its images. On failure everything created so far is destroyed again.
func (s *Swapchain) Create(width, height uint32) error {
	if s.Created() {
		return fmt.Errorf("vk.CreateSwapchain(): swapchain already created")
	}
	drv := s.ctx.Driver()

	info := device.SwapchainCreateInfo{
		Surface:        s.surface,
		MinImageCount:  SwapchainMinImageCount,
		Format:         SwapchainFormat,
		ColorSpace:     SwapchainColorSpace,
		Extent:         device.Extent{Width: width, Height: height},
		ArrayLayers:    1,
		Usage:          device.ImageUsageColorAttachment,
		Sharing:        device.SharingModeExclusive,
		PreTransform:   device.SurfaceTransformIdentity,
		CompositeAlpha: device.CompositeAlphaOpaque,
		PresentMode:    SwapchainPresentMode,
		Clipped:        true,
	}
	if families := s.ctx.Families; families.Graphics != families.Present {
		info.Sharing = device.SharingModeConcurrent
		info.QueueFamilies = []uint32{families.Graphics, families.Present}
	}

	handle, err := drv.CreateSwapchain(s.ctx.Device, info)
	if err != nil {
		return err
	}
	s.handle = handle
	s.extent = info.Extent
	s.sharing = info.Sharing

	images, err := drv.SwapchainImages(s.ctx.Device, handle)
	if err != nil {
		s.Destroy()
		return err
	}
	s.images = images

	for idx, img := range images {
		view, err := drv.CreateImageView(s.ctx.Device, device.ImageViewCreateInfo{
			Image:       img,
			Format:      SwapchainFormat,
			MipLevels:   1,
			ArrayLayers: 1,
		})
		if err != nil {
			s.Destroy()
			return fmt.Errorf("image %d: %w", idx, err)
		}
		s.views = append(s.views, view)
	}
	return nil
}

// Destroy destroys all views and then the swapchain. Destroying an
// absent swapchain does nothing.
func (s *Swapchain) Destroy() {
	if !s.Created() {
		return
	}
	drv := s.ctx.Driver()
	for _, view := range s.views {
		drv.DestroyImageView(s.ctx.Device, view)
	}
	drv.DestroySwapchain(s.ctx.Device, s.handle)

	s.handle = 0
	s.extent = device.Extent{}
	s.images = nil
	s.views = nil
}

// Reset recreates a created swapchain with a new extent, nothing of
// the old images survives. No work may be in flight on the old swapchain.
func (s *Swapchain) Reset(width, height uint32) error {
	if !s.Created() {
		return nil
	}
	s.Destroy()
	return s.Create(width, height)
}

// Created tells whether the swapchain exists
func (s *Swapchain) Created() bool {
	return s.handle != 0
}

// Handle returns the API handle, zero when absent
func (s *Swapchain) Handle() device.Swapchain {
	return s.handle
}

// Format returns the image format
func (s *Swapchain) Format() device.Format {
	return SwapchainFormat
}

// Extent returns the extent the swapchain was created with
func (s *Swapchain) Extent() device.Extent {
	return s.extent
}

// Sharing returns how images are shared between queue families
func (s *Swapchain) Sharing() device.SharingMode {
	return s.sharing
}

// Images returns the images owned by the swapchain
func (s *Swapchain) Images() []device.Image {
	return s.images
}

// Views returns one view per image
func (s *Swapchain) Views() []device.ImageView {
	return s.views
}
