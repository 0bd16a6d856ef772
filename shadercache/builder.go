// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shadercache

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/devblok/gsvk/shader"
	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	header.Version = Version
	return &Builder{
		header:  header,
		entries: make(map[string]entry),
	}
}

type entry struct {
	name       string
	size       int64
	compressed []byte
}

// Builder creates archives. Entries are compressed as they are added and
// bundled together by WriteTo. Entries are written sorted by key.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries map[string]entry
}

// Add compresses a module and stores it under key. Will block until lz4
// finishes compression. Is safe to use concurrently in different goroutines.
func (b *Builder) Add(key, name string, words []uint32) error {
	data := shader.Bytes(words)

	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write(data); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.entries[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrDuplicate)
	}
	b.entries[key] = entry{
		name:       name,
		size:       int64(len(data)),
		compressed: compressed.Bytes(),
	}
	return nil
}

// Len returns the number of entries added so far
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.entries)
}

// WriteTo bundles and writes all of the entries added to the Builder
// into an archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	header := b.header
	header.Index = make([]IndexEntry, 0, len(keys))
	var offset int64
	for _, key := range keys {
		e := b.entries[key]
		header.Index = append(header.Index, IndexEntry{
			Key:            key,
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.compressed)),
		})
		offset += int64(len(e.compressed))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var written int64
	write := func(p []byte) error {
		n, err := w.Write(p)
		written += int64(n)
		return err
	}

	if err := write(magic[:]); err != nil {
		return written, err
	}
	if err := write(int64ToBinary(int64(len(rawHeader)))); err != nil {
		return written, err
	}
	if err := write(rawHeader); err != nil {
		return written, err
	}
	for _, key := range keys {
		if err := write(b.entries[key].compressed); err != nil {
			return written, err
		}
	}
	return written, nil
}
