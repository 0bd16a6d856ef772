// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import "fmt"

// Enumerations carry the numeric values of their API counterparts.

// DeviceType is the kind of a physical device
type DeviceType uint32

// Device types
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeOther:         "other",
	DeviceTypeIntegratedGPU: "integrated",
	DeviceTypeDiscreteGPU:   "discrete",
	DeviceTypeVirtualGPU:    "virtual",
	DeviceTypeCPU:           "cpu",
}

func (t DeviceType) String() string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DeviceType(%d)", uint32(t))
}

// MarshalText implements encoding.TextMarshaler
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Format is a pixel format
type Format uint32

// Formats used by the presentation layer
const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatB8G8R8A8Unorm Format = 44
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "undefined"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8_UNORM"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// ColorSpace of presented images
type ColorSpace uint32

// Color spaces
const (
	ColorSpaceSRGBNonlinear ColorSpace = 0
)

// PresentMode decides how images are queued for presentation
type PresentMode uint32

// Present modes
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

// SharingMode decides whether images are owned by one queue family at a time
type SharingMode uint32

// Sharing modes
const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

func (m SharingMode) String() string {
	if m == SharingModeConcurrent {
		return "concurrent"
	}
	return "exclusive"
}

// QueueFlags tell the capabilities of a queue family
type QueueFlags uint32

// Queue capability bits
const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

// ImageUsage bits
type ImageUsage uint32

// Image usage bits
const (
	ImageUsageTransferSrc     ImageUsage = 0x01
	ImageUsageTransferDst     ImageUsage = 0x02
	ImageUsageSampled         ImageUsage = 0x04
	ImageUsageColorAttachment ImageUsage = 0x10
)

// SurfaceTransform applied before presentation
type SurfaceTransform uint32

// Surface transforms
const (
	SurfaceTransformIdentity SurfaceTransform = 0x01
)

// CompositeAlpha decides how alpha is composited with other surfaces
type CompositeAlpha uint32

// Composite alpha modes
const (
	CompositeAlphaOpaque CompositeAlpha = 0x01
)
