// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device abstracts the slice of the Vulkan API needed to bring up
// a presentation capable device. Handles are opaque and zero is the null handle.
package device

// Opaque API handles
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Device         uintptr
	Queue          uintptr
	Surface        uintptr
	Swapchain      uintptr
	Image          uintptr
	ImageView      uintptr
)

// Driver is the set of API entry points used by the device layer.
// A Driver is not safe for concurrent use.
type Driver interface {
	// InstanceExtensions lists the names of every available instance extension
	InstanceExtensions() ([]string, error)

	// InstanceLayers lists the names of every available instance layer
	InstanceLayers() ([]string, error)

	CreateInstance(info InstanceCreateInfo) (Instance, error)
	DestroyInstance(instance Instance)

	// PhysicalDevices enumerates devices in the order the API reports them
	PhysicalDevices(instance Instance) ([]PhysicalDevice, error)

	// Describe queries the cached properties of a physical device
	Describe(pd PhysicalDevice) (PhysicalDeviceInfo, error)

	QueueFamilies(pd PhysicalDevice) []QueueFamilyProperties
	SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error)
	DeviceExtensions(pd PhysicalDevice) ([]string, error)

	CreateDevice(pd PhysicalDevice, info DeviceCreateInfo) (Device, error)
	DeviceQueue(dev Device, family, index uint32) Queue
	DeviceWaitIdle(dev Device) error
	DestroyDevice(dev Device)

	DestroySurface(instance Instance, surface Surface)

	CreateSwapchain(dev Device, info SwapchainCreateInfo) (Swapchain, error)
	SwapchainImages(dev Device, swapchain Swapchain) ([]Image, error)
	DestroySwapchain(dev Device, swapchain Swapchain)

	CreateImageView(dev Device, info ImageViewCreateInfo) (ImageView, error)
	DestroyImageView(dev Device, view ImageView)
}

// MakeVersion packs a version triple the way the API expects it
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// ApplicationInfo identifies the application to the driver
type ApplicationInfo struct {
	Name          string
	Version       uint32
	EngineName    string
	EngineVersion uint32
	APIVersion    uint32
}

// InstanceCreateInfo is used to create an instance
type InstanceCreateInfo struct {
	Application ApplicationInfo
	Extensions  []string
	Layers      []string
}

// QueueCreateInfo requests len(Priorities) queues from a family
type QueueCreateInfo struct {
	Family     uint32
	Priorities []float32
}

// DeviceCreateInfo is used to create a logical device
type DeviceCreateInfo struct {
	Queues     []QueueCreateInfo
	Extensions []string
	Layers     []string
}

// Extent is a two dimensional size in pixels
type Extent struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// SwapchainCreateInfo is used to create a swapchain
type SwapchainCreateInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         Format
	ColorSpace     ColorSpace
	Extent         Extent
	ArrayLayers    uint32
	Usage          ImageUsage
	Sharing        SharingMode
	QueueFamilies  []uint32
	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
	OldSwapchain   Swapchain
}

// ImageViewCreateInfo describes a 2D color view with identity swizzle
type ImageViewCreateInfo struct {
	Image       Image
	Format      Format
	MipLevels   uint32
	ArrayLayers uint32
}

// QueueFamilyProperties describes a queue family of a physical device
type QueueFamilyProperties struct {
	Flags QueueFlags
	Count uint32
}

// MemoryHeap describes one memory heap of a physical device
type MemoryHeap struct {
	Size        uint64 `json:"size"`
	DeviceLocal bool   `json:"deviceLocal"`
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	Handle              PhysicalDevice `json:"-"`
	VendorID            uint32         `json:"vendorId"`
	DeviceID            uint32         `json:"deviceId"`
	Name                string         `json:"name"`
	Type                DeviceType     `json:"type"`
	DriverVersion       uint32         `json:"driverVersion"`
	APIVersion          uint32         `json:"apiVersion"`
	MaxImageDimension2D uint32         `json:"maxImageDimension2D"`
	MemoryHeaps         []MemoryHeap   `json:"memoryHeaps"`
	Extensions          []string       `json:"extensions,omitempty"`
	Layers              []string       `json:"layers,omitempty"`
}

// DeviceLocalMemory sums the sizes of all device local heaps
func (p PhysicalDeviceInfo) DeviceLocalMemory() uint64 {
	var total uint64
	for _, heap := range p.MemoryHeaps {
		if heap.DeviceLocal {
			total += heap.Size
		}
	}
	return total
}
