// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shadercache stores compiled SPIR-V modules in an lz4 backed
// archive. Like kar every entry is compressed on its own and the index is
// known before any entry is read, so archives are meant to be memory mapped
// and entries decompressed straight from their place. Archives are
// immutable once written and can be read from concurrently.
package shadercache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"

	"github.com/devblok/gsvk/shader"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a shader cache archive")
	ErrNotFound   = errors.New("no such entry in shader cache")
	ErrDuplicate  = errors.New("entry already added")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8
	preambleLength         = MagicLength + HeaderSizeNumberLength
)

// Version of the archive layout
const Version = 1

var magic = [MagicLength]byte{'G', 'S', 'C', '\x00'}

// IndexEntry is info for one module in the index. Offsets
// are relative to the end of the header.
type IndexEntry struct {
	Key            string
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for shader cache archives
type Header struct {
	Compiler    string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

// Options are the compilation inputs that make up a key
type Options struct {
	Kind         shader.Kind
	Optimization shader.OptimizationLevel
	Debug        bool
	Macros       map[string]string
}

// Key derives the cache key of a compilation. Equal inputs give equal keys
// regardless of macro order.
func Key(source string, opts Options) string {
	h := sha256.New()
	writeField := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}

	writeField(source)
	writeField(opts.Kind.Stage())
	writeField(opts.Optimization.String())
	writeField(strconv.FormatBool(opts.Debug))

	names := make([]string, 0, len(opts.Macros))
	for name := range opts.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeField(name)
		writeField(opts.Macros[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func int64ToBinary(num int64) []byte {
	bts := make([]byte, HeaderSizeNumberLength)
	binary.LittleEndian.PutUint64(bts, uint64(num))
	return bts
}

func binaryToint64(bts []byte) int64 {
	return int64(binary.LittleEndian.Uint64(bts))
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(bts))
	return dec.Decode(obj)
}
