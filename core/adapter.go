// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devblok/gsvk/device"
)

// AdapterID identifies an adapter by its PCI vendor and device ids
type AdapterID struct {
	Vendor uint32
	Device uint32
}

// AdapterIDOf returns the id of a physical device
func AdapterIDOf(info device.PhysicalDeviceInfo) AdapterID {
	return AdapterID{Vendor: info.VendorID, Device: info.DeviceID}
}

func (a AdapterID) String() string {
	return fmt.Sprintf("%04X:%04X", a.Vendor, a.Device)
}

// ParseAdapterID parses "vendor:device" in hex. Trailing subsystem and
// revision fields are accepted and ignored. DefaultAdapter and the empty
// string yield nil.
func ParseAdapterID(s string) (*AdapterID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == DefaultAdapter {
		return nil, nil
	}

	fields := strings.Split(s, ":")
	if len(fields) != 2 && len(fields) != 4 {
		return nil, fmt.Errorf("adapter %q: expected vendor:device", s)
	}

	var ids [2]uint32
	for i := range ids {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(fields[i]), "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("adapter %q: %w", s, err)
		}
		ids[i] = uint32(v)
	}
	return &AdapterID{Vendor: ids[0], Device: ids[1]}, nil
}
