// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the first word of every SPIR-V module
const Magic uint32 = 0x07230203

// ErrNotSPIRV is returned for data that is not a SPIR-V module
var ErrNotSPIRV = errors.New("not a SPIR-V module")

// Words packs little endian SPIR-V bytes into words
func Words(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotSPIRV, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != Magic {
		return nil, fmt.Errorf("%w: magic %#08x", ErrNotSPIRV, words[0])
	}
	return words, nil
}

// Bytes unpacks words into little endian bytes
func Bytes(words []uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}
