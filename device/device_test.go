// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMakeVersion(t *testing.T) {
	if v := MakeVersion(1, 0, 0); v != 1<<22 {
		t.Fatalf("expected %d, got %d", 1<<22, v)
	}
	if v := MakeVersion(1, 2, 3); v != (1<<22 | 2<<12 | 3) {
		t.Fatalf("unexpected packed version %d", v)
	}
}

func TestSafeStrings(t *testing.T) {
	safe := safeStrings([]string{"VK_KHR_surface", "VK_KHR_swapchain"})
	if len(safe) != 2 {
		t.Fatalf("expected 2 strings, got %d", len(safe))
	}
	for _, s := range safe {
		if !strings.HasSuffix(s, "\x00") {
			t.Fatalf("%q is not null terminated", s)
		}
	}
	if len(safeStrings(nil)) != 0 {
		t.Fatal("expected no strings")
	}
}

func TestHandleRoundTrip(t *testing.T) {
	type opaque struct{ _ int }
	ptr := &opaque{}
	h := toHandle(ptr)
	if back := fromHandle[*opaque](h); back != ptr {
		t.Fatal("handle did not round trip")
	}
	if fromHandle[*opaque](0) != nil {
		t.Fatal("zero handle must be nil")
	}
}

func TestDeviceLocalMemory(t *testing.T) {
	info := PhysicalDeviceInfo{
		MemoryHeaps: []MemoryHeap{
			{Size: 4 << 30, DeviceLocal: true},
			{Size: 16 << 30},
			{Size: 256 << 20, DeviceLocal: true},
		},
	}
	if got, want := info.DeviceLocalMemory(), uint64(4<<30+256<<20); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestPhysicalDeviceInfoJSON(t *testing.T) {
	info := PhysicalDeviceInfo{
		Handle:   42,
		VendorID: 0x10DE,
		DeviceID: 0x1B80,
		Name:     "GeForce GTX 1080",
		Type:     DeviceTypeDiscreteGPU,
	}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"discrete"`) {
		t.Fatalf("device type not marshalled by name: %s", s)
	}
	if strings.Contains(s, "42") {
		t.Fatalf("handle must not be marshalled: %s", s)
	}
}

func TestDeviceTypeString(t *testing.T) {
	if DeviceTypeIntegratedGPU.String() != "integrated" {
		t.Fatal(DeviceTypeIntegratedGPU.String())
	}
	if DeviceType(99).String() != "DeviceType(99)" {
		t.Fatal(DeviceType(99).String())
	}
}
