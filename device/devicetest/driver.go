// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package devicetest provides an in-memory device.Driver that records the
// calls made against it, tracks live handles and injects failures.
package devicetest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/devblok/gsvk/device"
)

// Operation names accepted by FailOn and FailAfter
const (
	OpInstanceExtensions = "InstanceExtensions"
	OpInstanceLayers     = "InstanceLayers"
	OpCreateInstance     = "CreateInstance"
	OpPhysicalDevices    = "PhysicalDevices"
	OpDescribe           = "Describe"
	OpSurfaceSupport     = "SurfaceSupport"
	OpDeviceExtensions   = "DeviceExtensions"
	OpCreateDevice       = "CreateDevice"
	OpDeviceWaitIdle     = "DeviceWaitIdle"
	OpCreateSurface      = "CreateSurface"
	OpCreateSwapchain    = "CreateSwapchain"
	OpSwapchainImages    = "SwapchainImages"
	OpCreateImageView    = "CreateImageView"
)

// ErrInjected is returned by operations configured with FailOn
// when no specific error was given
var ErrInjected = errors.New("devicetest: injected failure")

// Adapter describes a fake physical device
type Adapter struct {
	Info       device.PhysicalDeviceInfo
	Families   []device.QueueFamilyProperties
	Present    []bool
	Extensions []string
}

type failure struct {
	after int
	err   error
}

type swapchain struct {
	info   device.SwapchainCreateInfo
	images []device.Image
}

// Driver is a fake device.Driver
type Driver struct {
	// Extensions and Layers are reported as available on the instance level
	Extensions []string
	Layers     []string

	// ImageCount overrides the number of images a swapchain holds,
	// by default it equals the requested minimum image count
	ImageCount uint32

	// Events lists every create, destroy and wait call in order
	Events []string

	// Misuse collects destroy calls on handles that are not alive
	Misuse []string

	InstanceInfo   device.InstanceCreateInfo
	DeviceInfo     device.DeviceCreateInfo
	SwapchainInfos []device.SwapchainCreateInfo
	WaitIdleCalls  int

	adapters   []Adapter
	failures   map[string]*failure
	live       map[uintptr]string
	swapchains map[device.Swapchain]*swapchain
	next       uintptr
}

var _ device.Driver = (*Driver)(nil)

// New creates a driver exposing the adapters in enumeration order.
// Adapter handles are assigned by position, starting at 1.
func New(adapters ...Adapter) *Driver {
	d := &Driver{
		failures:   make(map[string]*failure),
		live:       make(map[uintptr]string),
		swapchains: make(map[device.Swapchain]*swapchain),
		next:       0x1000,
	}
	for i, a := range adapters {
		a.Info.Handle = device.PhysicalDevice(i + 1)
		d.adapters = append(d.adapters, a)
	}
	return d
}

// FailOn makes every call of op fail with err
func (d *Driver) FailOn(op string, err error) {
	d.FailAfter(op, 0, err)
}

// FailAfter lets op succeed n times before it fails with err
func (d *Driver) FailAfter(op string, n int, err error) {
	if err == nil {
		err = ErrInjected
	}
	d.failures[op] = &failure{after: n, err: err}
}

// Heal removes an injected failure
func (d *Driver) Heal(op string) {
	delete(d.failures, op)
}

// Live returns the number of live handles of the given kind,
// or of all kinds when kind is empty
func (d *Driver) Live(kind string) int {
	var n int
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// LiveKinds lists the kinds of all live handles, sorted
func (d *Driver) LiveKinds() []string {
	kinds := make([]string, 0, len(d.live))
	for _, k := range d.live {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Adapter returns the adapter registered under a handle
func (d *Driver) Adapter(pd device.PhysicalDevice) (Adapter, bool) {
	idx := int(pd) - 1
	if idx < 0 || idx >= len(d.adapters) {
		return Adapter{}, false
	}
	return d.adapters[idx], true
}

// NewSurface allocates a surface the way a windowing library would
func (d *Driver) NewSurface(instance device.Instance) (device.Surface, error) {
	if err := d.check(OpCreateSurface); err != nil {
		return 0, err
	}
	if d.live[uintptr(instance)] != "Instance" {
		return 0, fmt.Errorf("devicetest: surface for dead instance %#x", instance)
	}
	return device.Surface(d.alloc("Surface")), nil
}

func (d *Driver) check(op string) error {
	f, ok := d.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	return f.err
}

func (d *Driver) alloc(kind string) uintptr {
	d.next++
	d.live[d.next] = kind
	d.Events = append(d.Events, "Create"+kind)
	return d.next
}

func (d *Driver) free(kind string, h uintptr) {
	d.Events = append(d.Events, "Destroy"+kind)
	if d.live[h] != kind {
		d.Misuse = append(d.Misuse, fmt.Sprintf("Destroy%s(%#x)", kind, h))
		return
	}
	delete(d.live, h)
}

// InstanceExtensions implements device.Driver
func (d *Driver) InstanceExtensions() ([]string, error) {
	if err := d.check(OpInstanceExtensions); err != nil {
		return nil, err
	}
	return append([]string(nil), d.Extensions...), nil
}

// InstanceLayers implements device.Driver
func (d *Driver) InstanceLayers() ([]string, error) {
	if err := d.check(OpInstanceLayers); err != nil {
		return nil, err
	}
	return append([]string(nil), d.Layers...), nil
}

// CreateInstance implements device.Driver
func (d *Driver) CreateInstance(info device.InstanceCreateInfo) (device.Instance, error) {
	if err := d.check(OpCreateInstance); err != nil {
		return 0, err
	}
	d.InstanceInfo = info
	return device.Instance(d.alloc("Instance")), nil
}

// DestroyInstance implements device.Driver
func (d *Driver) DestroyInstance(instance device.Instance) {
	d.free("Instance", uintptr(instance))
}

// PhysicalDevices implements device.Driver
func (d *Driver) PhysicalDevices(instance device.Instance) ([]device.PhysicalDevice, error) {
	if err := d.check(OpPhysicalDevices); err != nil {
		return nil, err
	}
	handles := make([]device.PhysicalDevice, 0, len(d.adapters))
	for _, a := range d.adapters {
		handles = append(handles, a.Info.Handle)
	}
	return handles, nil
}

// Describe implements device.Driver
func (d *Driver) Describe(pd device.PhysicalDevice) (device.PhysicalDeviceInfo, error) {
	if err := d.check(OpDescribe); err != nil {
		return device.PhysicalDeviceInfo{}, err
	}
	a, ok := d.Adapter(pd)
	if !ok {
		return device.PhysicalDeviceInfo{}, fmt.Errorf("devicetest: unknown physical device %#x", pd)
	}
	info := a.Info
	info.Extensions = append([]string(nil), a.Extensions...)
	return info, nil
}

// QueueFamilies implements device.Driver
func (d *Driver) QueueFamilies(pd device.PhysicalDevice) []device.QueueFamilyProperties {
	a, _ := d.Adapter(pd)
	return append([]device.QueueFamilyProperties(nil), a.Families...)
}

// SurfaceSupport implements device.Driver
func (d *Driver) SurfaceSupport(pd device.PhysicalDevice, family uint32, surface device.Surface) (bool, error) {
	if err := d.check(OpSurfaceSupport); err != nil {
		return false, err
	}
	a, _ := d.Adapter(pd)
	if int(family) >= len(a.Present) {
		return false, nil
	}
	return a.Present[family], nil
}

// DeviceExtensions implements device.Driver
func (d *Driver) DeviceExtensions(pd device.PhysicalDevice) ([]string, error) {
	if err := d.check(OpDeviceExtensions); err != nil {
		return nil, err
	}
	a, _ := d.Adapter(pd)
	return append([]string(nil), a.Extensions...), nil
}

// CreateDevice implements device.Driver
func (d *Driver) CreateDevice(pd device.PhysicalDevice, info device.DeviceCreateInfo) (device.Device, error) {
	if err := d.check(OpCreateDevice); err != nil {
		return 0, err
	}
	d.DeviceInfo = info
	return device.Device(d.alloc("Device")), nil
}

// DeviceQueue implements device.Driver, queues are derived from
// the family and index so they compare equal across calls
func (d *Driver) DeviceQueue(dev device.Device, family, index uint32) device.Queue {
	return device.Queue(uintptr(dev)<<16 | uintptr(family)<<8 | uintptr(index))
}

// DeviceWaitIdle implements device.Driver
func (d *Driver) DeviceWaitIdle(dev device.Device) error {
	d.WaitIdleCalls++
	d.Events = append(d.Events, "WaitIdle")
	return d.check(OpDeviceWaitIdle)
}

// DestroyDevice implements device.Driver
func (d *Driver) DestroyDevice(dev device.Device) {
	d.free("Device", uintptr(dev))
}

// DestroySurface implements device.Driver
func (d *Driver) DestroySurface(instance device.Instance, surface device.Surface) {
	if d.live[uintptr(instance)] != "Instance" {
		d.Misuse = append(d.Misuse, fmt.Sprintf("DestroySurface(%#x) after instance", surface))
	}
	d.free("Surface", uintptr(surface))
}

// CreateSwapchain implements device.Driver
func (d *Driver) CreateSwapchain(dev device.Device, info device.SwapchainCreateInfo) (device.Swapchain, error) {
	if err := d.check(OpCreateSwapchain); err != nil {
		return 0, err
	}
	d.SwapchainInfos = append(d.SwapchainInfos, info)

	count := info.MinImageCount
	if d.ImageCount > 0 {
		count = d.ImageCount
	}
	sc := &swapchain{info: info}
	h := device.Swapchain(d.alloc("Swapchain"))
	for i := uint32(0); i < count; i++ {
		sc.images = append(sc.images, device.Image(uintptr(h)<<8|uintptr(i+1)))
	}
	d.swapchains[h] = sc
	return h, nil
}

// SwapchainImages implements device.Driver
func (d *Driver) SwapchainImages(dev device.Device, h device.Swapchain) ([]device.Image, error) {
	if err := d.check(OpSwapchainImages); err != nil {
		return nil, err
	}
	sc, ok := d.swapchains[h]
	if !ok {
		return nil, fmt.Errorf("devicetest: unknown swapchain %#x", h)
	}
	return append([]device.Image(nil), sc.images...), nil
}

// DestroySwapchain implements device.Driver
func (d *Driver) DestroySwapchain(dev device.Device, h device.Swapchain) {
	if d.Live("ImageView") > 0 {
		d.Misuse = append(d.Misuse, fmt.Sprintf("DestroySwapchain(%#x) with live views", h))
	}
	delete(d.swapchains, h)
	d.free("Swapchain", uintptr(h))
}

// CreateImageView implements device.Driver
func (d *Driver) CreateImageView(dev device.Device, info device.ImageViewCreateInfo) (device.ImageView, error) {
	if err := d.check(OpCreateImageView); err != nil {
		return 0, err
	}
	return device.ImageView(d.alloc("ImageView")), nil
}

// DestroyImageView implements device.Driver
func (d *Driver) DestroyImageView(dev device.Device, view device.ImageView) {
	d.free("ImageView", uintptr(view))
}
