// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"unsafe"
)

// fromHandle reinterprets an opaque handle as the pointer sized API handle T
func fromHandle[T any](h uintptr) T {
	return *(*T)(unsafe.Pointer(&h))
}

func toHandle[T any](v T) uintptr {
	return *(*uintptr)(unsafe.Pointer(&v))
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}
