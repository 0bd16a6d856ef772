// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// NewVulkanDriver loads the Vulkan entry points. When procAddr is nil the
// system loader is used, otherwise procAddr must point to vkGetInstanceProcAddr
// as handed out by the windowing library.
func NewVulkanDriver(procAddr unsafe.Pointer) (*VulkanDriver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.New("vk.InstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}
	return &VulkanDriver{}, nil
}

// VulkanDriver implements Driver on top of the Vulkan loader
type VulkanDriver struct{}

var _ Driver = (*VulkanDriver)(nil)

// VkInstance returns the underlying API handle, windowing libraries
// need it to create surfaces
func (VulkanDriver) VkInstance(instance Instance) vk.Instance {
	return fromHandle[vk.Instance](uintptr(instance))
}

// SurfaceFromPointer wraps a surface created outside of the driver
func SurfaceFromPointer(surface unsafe.Pointer) Surface {
	return Surface(uintptr(surface))
}

// InstanceExtensions implements Driver
func (VulkanDriver) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceExtensionProperties(): " + err.Error())
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceExtensionProperties(): " + err.Error())
	}
	return extensionNames(properties[:count]), nil
}

// InstanceLayers implements Driver
func (VulkanDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	properties := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	return layerNames(properties[:count]), nil
}

// CreateInstance implements Driver
func (VulkanDriver) CreateInstance(info InstanceCreateInfo) (Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         info.Application.APIVersion,
		ApplicationVersion: info.Application.Version,
		EngineVersion:      info.Application.EngineVersion,
		PApplicationName:   safeString(info.Application.Name),
		PEngineName:        safeString(info.Application.EngineName),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return 0, errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(instance)

	return Instance(toHandle(instance)), nil
}

// DestroyInstance implements Driver
func (VulkanDriver) DestroyInstance(instance Instance) {
	vk.DestroyInstance(fromHandle[vk.Instance](uintptr(instance)), nil)
}

// PhysicalDevices implements Driver
func (VulkanDriver) PhysicalDevices(instance Instance) ([]PhysicalDevice, error) {
	vkInstance := fromHandle[vk.Instance](uintptr(instance))

	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(vkInstance, &count, nil)); err != nil {
		return nil, errors.New("vk.EnumeratePhysicalDevices(): " + err.Error())
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(vkInstance, &count, devices)); err != nil {
		return nil, errors.New("vk.EnumeratePhysicalDevices(): " + err.Error())
	}

	handles := make([]PhysicalDevice, 0, count)
	for _, pd := range devices[:count] {
		handles = append(handles, PhysicalDevice(toHandle(pd)))
	}
	return handles, nil
}

// Describe implements Driver
func (d VulkanDriver) Describe(pd PhysicalDevice) (PhysicalDeviceInfo, error) {
	vkDevice := fromHandle[vk.PhysicalDevice](uintptr(pd))
	info := PhysicalDeviceInfo{Handle: pd}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(vkDevice, &properties)
	properties.Deref()
	properties.Limits.Deref()
	info.VendorID = properties.VendorID
	info.DeviceID = properties.DeviceID
	info.Name = vk.ToString(properties.DeviceName[:])
	info.Type = DeviceType(properties.DeviceType)
	info.DriverVersion = properties.DriverVersion
	info.APIVersion = properties.ApiVersion
	info.MaxImageDimension2D = properties.Limits.MaxImageDimension2D

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vkDevice, &memoryProperties)
	memoryProperties.Deref()
	for i := uint32(0); i < memoryProperties.MemoryHeapCount; i++ {
		memoryProperties.MemoryHeaps[i].Deref()
		heap := memoryProperties.MemoryHeaps[i]
		info.MemoryHeaps = append(info.MemoryHeaps, MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}

	extensions, err := d.DeviceExtensions(pd)
	if err != nil {
		return info, err
	}
	info.Extensions = extensions

	var numLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(vkDevice, &numLayers, nil)); err != nil {
		return info, errors.New("vk.EnumerateDeviceLayerProperties(): " + err.Error())
	}
	layers := make([]vk.LayerProperties, numLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(vkDevice, &numLayers, layers)); err != nil {
		return info, errors.New("vk.EnumerateDeviceLayerProperties(): " + err.Error())
	}
	info.Layers = layerNames(layers[:numLayers])

	return info, nil
}

// QueueFamilies implements Driver
func (VulkanDriver) QueueFamilies(pd PhysicalDevice) []QueueFamilyProperties {
	vkDevice := fromHandle[vk.PhysicalDevice](uintptr(pd))

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(vkDevice, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(vkDevice, &count, families)

	result := make([]QueueFamilyProperties, 0, count)
	for _, family := range families[:count] {
		family.Deref()
		result = append(result, QueueFamilyProperties{
			Flags: QueueFlags(family.QueueFlags),
			Count: family.QueueCount,
		})
	}
	return result
}

// SurfaceSupport implements Driver
func (VulkanDriver) SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error) {
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(
		fromHandle[vk.PhysicalDevice](uintptr(pd)),
		family,
		fromHandle[vk.Surface](uintptr(surface)),
		&supported,
	)); err != nil {
		return false, errors.New("vk.GetPhysicalDeviceSurfaceSupport(): " + err.Error())
	}
	return supported.B(), nil
}

// DeviceExtensions implements Driver
func (VulkanDriver) DeviceExtensions(pd PhysicalDevice) ([]string, error) {
	vkDevice := fromHandle[vk.PhysicalDevice](uintptr(pd))

	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(vkDevice, "", &count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(vkDevice, "", &count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	return extensionNames(properties[:count]), nil
}

// CreateDevice implements Driver
func (VulkanDriver) CreateDevice(pd PhysicalDevice, info DeviceCreateInfo) (Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var dev vk.Device
	if err := vk.Error(vk.CreateDevice(fromHandle[vk.PhysicalDevice](uintptr(pd)), &dci, nil, &dev)); err != nil {
		return 0, errors.New("vk.CreateDevice(): " + err.Error())
	}
	return Device(toHandle(dev)), nil
}

// DeviceQueue implements Driver
func (VulkanDriver) DeviceQueue(dev Device, family, index uint32) Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(fromHandle[vk.Device](uintptr(dev)), family, index, &queue)
	return Queue(toHandle(queue))
}

// DeviceWaitIdle implements Driver
func (VulkanDriver) DeviceWaitIdle(dev Device) error {
	if err := vk.Error(vk.DeviceWaitIdle(fromHandle[vk.Device](uintptr(dev)))); err != nil {
		return errors.New("vk.DeviceWaitIdle(): " + err.Error())
	}
	return nil
}

// DestroyDevice implements Driver
func (VulkanDriver) DestroyDevice(dev Device) {
	vk.DestroyDevice(fromHandle[vk.Device](uintptr(dev)), nil)
}

// DestroySurface implements Driver
func (VulkanDriver) DestroySurface(instance Instance, surface Surface) {
	vk.DestroySurface(
		fromHandle[vk.Instance](uintptr(instance)),
		fromHandle[vk.Surface](uintptr(surface)),
		nil,
	)
}

// CreateSwapchain implements Driver
func (VulkanDriver) CreateSwapchain(dev Device, info SwapchainCreateInfo) (Swapchain, error) {
	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         fromHandle[vk.Surface](uintptr(info.Surface)),
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.Format),
		ImageColorSpace: vk.ColorSpace(info.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
		},
		ImageArrayLayers:      info.ArrayLayers,
		ImageUsage:            vk.ImageUsageFlags(info.Usage),
		ImageSharingMode:      vk.SharingMode(info.Sharing),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilies)),
		PQueueFamilyIndices:   info.QueueFamilies,
		PreTransform:          vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:           vk.PresentMode(info.PresentMode),
		Clipped:               vk.False,
		OldSwapchain:          fromHandle[vk.Swapchain](uintptr(info.OldSwapchain)),
	}
	if info.Clipped {
		scci.Clipped = vk.True
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(fromHandle[vk.Device](uintptr(dev)), &scci, nil, &swapchain)); err != nil {
		return 0, errors.New("vk.CreateSwapchain(): " + err.Error())
	}
	return Swapchain(toHandle(swapchain)), nil
}

// SwapchainImages implements Driver
func (VulkanDriver) SwapchainImages(dev Device, swapchain Swapchain) ([]Image, error) {
	vkDev := fromHandle[vk.Device](uintptr(dev))
	vkSwapchain := fromHandle[vk.Swapchain](uintptr(swapchain))

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(vkDev, vkSwapchain, &numImages, nil)); err != nil {
		return nil, errors.New("vk.GetSwapchainImages(num): " + err.Error())
	}
	images := make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(vkDev, vkSwapchain, &numImages, images)); err != nil {
		return nil, errors.New("vk.GetSwapchainImages(images): " + err.Error())
	}

	result := make([]Image, 0, numImages)
	for _, img := range images[:numImages] {
		result = append(result, Image(toHandle(img)))
	}
	return result, nil
}

// DestroySwapchain implements Driver
func (VulkanDriver) DestroySwapchain(dev Device, swapchain Swapchain) {
	vk.DestroySwapchain(
		fromHandle[vk.Device](uintptr(dev)),
		fromHandle[vk.Swapchain](uintptr(swapchain)),
		nil,
	)
}

// CreateImageView implements Driver
func (VulkanDriver) CreateImageView(dev Device, info ImageViewCreateInfo) (ImageView, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    fromHandle[vk.Image](uintptr(info.Image)),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     info.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     info.ArrayLayers,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(fromHandle[vk.Device](uintptr(dev)), &ivci, nil, &view)); err != nil {
		return 0, errors.New("vk.CreateImageView(): " + err.Error())
	}
	return ImageView(toHandle(view)), nil
}

// DestroyImageView implements Driver
func (VulkanDriver) DestroyImageView(dev Device, view ImageView) {
	vk.DestroyImageView(
		fromHandle[vk.Device](uintptr(dev)),
		fromHandle[vk.ImageView](uintptr(view)),
		nil,
	)
}

func extensionNames(properties []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(properties))
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

func layerNames(properties []vk.LayerProperties) []string {
	names := make([]string, 0, len(properties))
	for _, layer := range properties {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names
}
