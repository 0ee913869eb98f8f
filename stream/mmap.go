// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package stream

import (
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/flow-tools/ft3"
)

// MappedReader reads an uncompressed FT3 stream directly out of a
// memory-mapped file, avoiding the copy ReadRecord otherwise makes per
// call. Only uncompressed streams (Header.Flags without FlagCompress) can
// be mapped this way, since zlib's window can't be indexed randomly.
type MappedReader struct {
	Header     *Header
	recordSize int

	file *os.File
	data mmap.MMap
	pos  int
}

// OpenMapped memory-maps path and parses its FT3 header.
func OpenMapped(path string) (*MappedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	if len(data) < 4 || data[0] != Magic1 || data[1] != Magic2 {
		data.Unmap()
		f.Close()
		return nil, netflow.ErrCorruptStream
	}
	if data[3] != FT3 {
		data.Unmap()
		f.Close()
		return nil, netflow.ErrUnsupportedStreamVersion
	}

	hdr, headerLen, err := decodeHeader(data[4:])
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	hdr.ByteOrderByte = data[2]
	hdr.StreamVersion = data[3]
	if hdr.Flags&FlagCompress != 0 {
		data.Unmap()
		f.Close()
		return nil, netflow.ErrCorruptStream
	}

	size, err := hdr.recordSize()
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	return &MappedReader{
		Header:     hdr,
		recordSize: size,
		file:       f,
		data:       data,
		pos:        4 + headerLen,
	}, nil
}

// ReadRecord returns a slice of the mapped file for the next record. The
// returned slice aliases the mapping and is invalid after Close.
func (r *MappedReader) ReadRecord() ([]byte, error) {
	if r.pos >= len(r.data) {
		return nil, io.EOF
	}
	end := r.pos + r.recordSize
	if end > len(r.data) {
		return nil, netflow.ErrTruncatedStream
	}
	rec := r.data[r.pos:end]
	r.pos = end
	return rec, nil
}

// Close unmaps the file and releases its descriptor.
func (r *MappedReader) Close() error {
	if err := r.data.Unmap(); err != nil {
		return err
	}
	return r.file.Close()
}
