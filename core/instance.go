// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"strings"

	"github.com/devblok/gsvk/device"
)

// Instance is a created API instance together with what was enabled on it
type Instance struct {
	driver     device.Driver
	handle     device.Instance
	extensions []string
	layers     []string
}

// CreateInstance creates an instance with every available extension enabled.
// With validation on, the layers of the configured policy that are available
// are enabled as well.
func CreateInstance(drv device.Driver, cfg InstanceConfiguration) (*Instance, error) {
	extensions, err := drv.InstanceExtensions()
	if err != nil {
		return nil, err
	}

	var layers []string
	if cfg.Validation {
		available, err := drv.InstanceLayers()
		if err != nil {
			return nil, err
		}
		policy := cfg.Layers
		if policy == nil {
			policy = DefaultValidationLayers
		}
		layers = MatchLayers(policy, available)
	}

	app := cfg.Application
	if app == (device.ApplicationInfo{}) {
		app = DefaultApplicationInfo
	}

	handle, err := drv.CreateInstance(device.InstanceCreateInfo{
		Application: app,
		Extensions:  extensions,
		Layers:      layers,
	})
	if err != nil {
		return nil, err
	}
	if handle == 0 {
		return nil, errors.New("vk.CreateInstance(): null instance")
	}

	return &Instance{
		driver:     drv,
		handle:     handle,
		extensions: extensions,
		layers:     layers,
	}, nil
}

// MatchLayers keeps every policy entry for which an available layer
// name starts with it. The policy name is kept, not the available one.
func MatchLayers(policy, available []string) []string {
	var enabled []string
	for _, wanted := range policy {
		for _, layer := range available {
			if strings.HasPrefix(layer, wanted) {
				enabled = append(enabled, wanted)
				break
			}
		}
	}
	return enabled
}

// Handle returns the API handle
func (i *Instance) Handle() device.Instance {
	return i.handle
}

// Extensions returns the enabled instance extensions
func (i *Instance) Extensions() []string {
	return i.extensions
}

// Layers returns the enabled instance layers
func (i *Instance) Layers() []string {
	return i.layers
}

// PhysicalDevices enumerates and describes every physical device
func (i *Instance) PhysicalDevices() ([]device.PhysicalDeviceInfo, error) {
	handles, err := i.driver.PhysicalDevices(i.handle)
	if err != nil {
		return nil, err
	}

	infos := make([]device.PhysicalDeviceInfo, 0, len(handles))
	for _, pd := range handles {
		info, err := i.driver.Describe(pd)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Destroy destroys the instance, it is safe to call more than once
func (i *Instance) Destroy() {
	if i == nil || i.handle == 0 {
		return
	}
	i.driver.DestroyInstance(i.handle)
	i.handle = 0
}
