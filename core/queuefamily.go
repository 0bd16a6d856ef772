// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/devblok/gsvk/device"
)

// QueueFamilyIndices holds the families used for graphics and presentation
type QueueFamilyIndices struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

// Complete tells whether both families were found
func (q QueueFamilyIndices) Complete() bool {
	return q.HasGraphics && q.HasPresent
}

// Unique returns the distinct family indices in ascending order
func (q QueueFamilyIndices) Unique() []uint32 {
	switch {
	case !q.Complete():
		return nil
	case q.Graphics == q.Present:
		return []uint32{q.Graphics}
	case q.Graphics < q.Present:
		return []uint32{q.Graphics, q.Present}
	default:
		return []uint32{q.Present, q.Graphics}
	}
}

// ResolveQueueFamilies scans every family of pd. A family may serve both
// roles. The scan never stops early, so the last matching family wins.
func ResolveQueueFamilies(drv device.Driver, pd device.PhysicalDevice, surface device.Surface) (QueueFamilyIndices, error) {
	var indices QueueFamilyIndices
	for i, family := range drv.QueueFamilies(pd) {
		idx := uint32(i)

		present, err := drv.SurfaceSupport(pd, idx, surface)
		if err != nil {
			return indices, fmt.Errorf("queue family %d: %w", idx, err)
		}
		if present {
			indices.Present, indices.HasPresent = idx, true
		}

		if family.Flags&device.QueueGraphics != 0 {
			indices.Graphics, indices.HasGraphics = idx, true
		}
	}
	return indices, nil
}
