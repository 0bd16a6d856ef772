// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shadercache

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/devblok/gsvk/shader"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// Open opens the archive in r. It will also check if r holds a shader
// cache archive at all, ErrFileFormat is returned when it does not.
func Open(r io.ReaderAt) (*Archive, error) {
	preamble := make([]byte, preambleLength)
	if num, err := r.ReadAt(preamble, 0); num < preambleLength {
		if err == nil || err == io.EOF {
			return nil, ErrFileFormat
		}
		return nil, err
	}
	if !bytes.Equal(preamble[:MagicLength], magic[:]) {
		return nil, ErrFileFormat
	}

	headerSize := binaryToint64(preamble[MagicLength:])
	if headerSize <= 0 || headerSize > 1<<30 {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, preambleLength); int64(num) < headerSize {
		if err == nil || err == io.EOF {
			return nil, ErrFileFormat
		}
		return nil, err
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrFileFormat, header.Version)
	}

	ar := &Archive{
		reader:  r,
		header:  header,
		payload: preambleLength + headerSize,
		index:   make(map[string]int, len(header.Index)),
	}
	for i, e := range header.Index {
		ar.index[e.Key] = i
	}
	return ar, nil
}

// Archive provides concurrent lookups in a shader cache archive
type Archive struct {
	reader  io.ReaderAt
	header  Header
	payload int64
	index   map[string]int
}

// Header returns the header the archive was written with
func (a *Archive) Header() Header {
	return a.header
}

// Entries lists the index, sorted by key
func (a *Archive) Entries() []IndexEntry {
	return a.header.Index
}

// Has tells whether key is in the archive
func (a *Archive) Has(key string) bool {
	_, ok := a.index[key]
	return ok
}

// Lookup decompresses the module stored under key
func (a *Archive) Lookup(key string) ([]uint32, error) {
	i, ok := a.index[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	e := a.header.Index[i]

	compressed := make([]byte, e.CompressedSize)
	if num, err := a.reader.ReadAt(compressed, a.payload+e.Offset); int64(num) < e.CompressedSize {
		if err == nil || err == io.EOF {
			return nil, ErrFileFormat
		}
		return nil, err
	}

	data, err := ioutil.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", e.Name, ErrFileFormat, err)
	}
	if int64(len(data)) != e.Size {
		return nil, fmt.Errorf("%s: %w: size %d, expected %d", e.Name, ErrFileFormat, len(data), e.Size)
	}
	return shader.Words(data)
}

// File is an archive memory mapped from disk
type File struct {
	*Archive
	mapped *mmap.ReaderAt
}

// OpenFile memory maps the archive at path
func OpenFile(path string) (*File, error) {
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := Open(mapped)
	if err != nil {
		mapped.Close()
		return nil, err
	}
	return &File{Archive: ar, mapped: mapped}, nil
}

// Close unmaps the file
func (f *File) Close() error {
	return f.mapped.Close()
}
