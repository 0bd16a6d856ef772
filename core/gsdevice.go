// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/devblok/gsvk/device"
	log "github.com/sirupsen/logrus"
)

// GSDeviceVK is the GS device on top of Vulkan. It owns the instance,
// the surface, the logical device and the swapchain.
type GSDeviceVK struct {
	driver device.Driver
	cfg    Configuration
	log    log.FieldLogger

	instance   *Instance
	surface    device.Surface
	ctx        *DeviceContext
	swapchain  *Swapchain
	backbuffer *Texture
}

// NewGSDeviceVK creates a device that is not yet brought up,
// call Create before use
func NewGSDeviceVK(drv device.Driver, cfg Configuration) *GSDeviceVK {
	return &GSDeviceVK{
		driver: drv,
		cfg:    cfg,
		log:    cfg.logger(),
	}
}

// Create brings the device up for the window. On failure everything
// created so far is destroyed and the device can be created again.
func (g *GSDeviceVK) Create(win Window) (err error) {
	if g.instance != nil {
		return errors.New("core.Create(): device already created")
	}
	if win == nil {
		return errors.New("core.Create(): no window")
	}

	explicit, err := ParseAdapterID(g.cfg.Adapter)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			g.Destroy()
		}
	}()

	if g.instance, err = CreateInstance(g.driver, g.cfg.Instance); err != nil {
		return err
	}
	g.log.WithFields(log.Fields{
		"extensions": len(g.instance.Extensions()),
		"layers":     g.instance.Layers(),
	}).Debug("instance created")

	devices, err := g.instance.PhysicalDevices()
	if err != nil {
		return err
	}
	for _, c := range RankDevices(devices) {
		g.log.WithFields(log.Fields{
			"adapter": c.ID,
			"name":    c.Info.Name,
			"score":   c.Score,
		}).Debug("physical device")
	}

	pd, ok := SelectDevice(devices, explicit)
	if !ok {
		if explicit != nil {
			return fmt.Errorf("adapter %s: %w", explicit, ErrAdapterNotFound)
		}
		return ErrNoSuitableDevice
	}
	g.log.WithFields(log.Fields{
		"adapter": AdapterIDOf(pd).String(),
		"name":    pd.Name,
		"type":    pd.Type.String(),
	}).Info("selected physical device")

	if g.surface, err = win.CreateSurface(g.instance.Handle()); err != nil {
		return err
	}
	if g.surface == 0 {
		return errors.New("core.Create(): window returned a null surface")
	}

	families, err := ResolveQueueFamilies(g.driver, pd.Handle, g.surface)
	if err != nil {
		return err
	}
	if !families.Complete() {
		return fmt.Errorf("adapter %s: %w", AdapterIDOf(pd), ErrIncompleteQueueFamilies)
	}
	g.log.WithFields(log.Fields{
		"graphics": families.Graphics,
		"present":  families.Present,
	}).Debug("queue families")

	if g.ctx, err = CreateLogicalDevice(g.driver, g.instance, pd, families); err != nil {
		return err
	}

	g.swapchain = NewSwapchain(g.ctx, g.surface)
	if err = g.swapchain.Create(1, 1); err != nil {
		return err
	}
	return g.Reset(1, 1)
}

// Reset recreates the swapchain and the backbuffer with a new size.
// The device is waited on before the old swapchain is destroyed. After a
// failed Reset the swapchain is absent and the next Reset creates it again.
func (g *GSDeviceVK) Reset(width, height int) error {
	if width <= 0 || height <= 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return fmt.Errorf("core.Reset(%d, %d): %w", width, height, ErrInvalidExtent)
	}
	if g.ctx == nil || g.swapchain == nil {
		return fmt.Errorf("core.Reset(): %w", ErrNotCreated)
	}

	if err := g.ctx.WaitIdle(); err != nil {
		return err
	}
	resize := g.swapchain.Reset
	if !g.swapchain.Created() {
		resize = g.swapchain.Create
	}
	if err := resize(uint32(width), uint32(height)); err != nil {
		g.backbuffer = nil
		return err
	}
	g.backbuffer = g.CreateSurface(TextureBackbuffer, width, height, g.swapchain.Format())

	g.log.WithFields(log.Fields{
		"extent": fmt.Sprintf("%dx%d", width, height),
		"images": len(g.swapchain.Images()),
	}).Debug("swapchain reset")
	return nil
}

// CreateSurface creates a texture record of the given kind
func (g *GSDeviceVK) CreateSurface(t TextureType, width, height int, format device.Format) *Texture {
	return &Texture{
		Type:   t,
		Width:  width,
		Height: height,
		Format: format,
	}
}

// Destroy releases the swapchain, the surface, the logical device and the
// instance in that order. It is safe on a partially created device.
func (g *GSDeviceVK) Destroy() {
	if g.swapchain != nil {
		g.swapchain.Destroy()
		g.swapchain = nil
	}
	g.backbuffer = nil

	if g.surface != 0 {
		g.driver.DestroySurface(g.instance.Handle(), g.surface)
		g.surface = 0
	}

	if g.ctx != nil {
		g.ctx.Destroy()
		g.ctx = nil
	}

	if g.instance != nil {
		g.instance.Destroy()
		g.instance = nil
	}
}

// Instance returns the instance, nil before Create
func (g *GSDeviceVK) Instance() *Instance {
	return g.instance
}

// Context returns the logical device, nil before Create
func (g *GSDeviceVK) Context() *DeviceContext {
	return g.ctx
}

// Surface returns the presentation surface
func (g *GSDeviceVK) Surface() device.Surface {
	return g.surface
}

// Swapchain returns the swapchain, nil before Create
func (g *GSDeviceVK) Swapchain() *Swapchain {
	return g.swapchain
}

// Backbuffer returns the texture standing for the current swapchain images
func (g *GSDeviceVK) Backbuffer() *Texture {
	return g.backbuffer
}
