// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sort"

	"github.com/devblok/gsvk/device"
)

// Candidate is a physical device with its selection score
type Candidate struct {
	Info  device.PhysicalDeviceInfo `json:"device"`
	ID    string                    `json:"id"`
	Score int64                     `json:"score"`
}

// Score rates a physical device, higher is better. Discrete GPUs get 1000
// on top of the maximum 2D image dimension and one point per megabyte of
// device local memory.
func Score(info device.PhysicalDeviceInfo) int64 {
	var score int64
	if info.Type == device.DeviceTypeDiscreteGPU {
		score += 1000
	}
	score += int64(info.MaxImageDimension2D)
	for _, heap := range info.MemoryHeaps {
		if heap.DeviceLocal {
			score += int64(heap.Size / 1000000)
		}
	}
	return score
}

// RankDevices orders devices from the best score to the worst.
// Among equal scores the device enumerated last comes first.
func RankDevices(devices []device.PhysicalDeviceInfo) []Candidate {
	ranked := make([]Candidate, 0, len(devices))
	for i := len(devices) - 1; i >= 0; i-- {
		ranked = append(ranked, Candidate{
			Info:  devices[i],
			ID:    AdapterIDOf(devices[i]).String(),
			Score: Score(devices[i]),
		})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}

// SelectDevice picks the device to run on. With an explicit id the device
// matching vendor and device id is returned, the last one if several match.
// Otherwise the best scored device is returned when its score is positive.
// Ties go to the device enumerated last.
func SelectDevice(devices []device.PhysicalDeviceInfo, explicit *AdapterID) (device.PhysicalDeviceInfo, bool) {
	if explicit != nil {
		var (
			found device.PhysicalDeviceInfo
			ok    bool
		)
		for _, info := range devices {
			if AdapterIDOf(info) == *explicit {
				found, ok = info, true
			}
		}
		return found, ok
	}

	ranked := RankDevices(devices)
	if len(ranked) == 0 || ranked[0].Score <= 0 {
		return device.PhysicalDeviceInfo{}, false
	}
	return ranked[0].Info, true
}
