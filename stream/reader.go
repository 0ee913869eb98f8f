// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package stream

import (
	"bufio"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/log"
)

// Reader reads an FT3 stream record by record. It is not safe for
// concurrent use.
type Reader struct {
	Header     *Header
	recordSize int

	src     io.Reader
	zr      io.ReadCloser // non-nil when the header declared FlagCompress
	logger  *log.Helper
}

// Open parses the FT3 preamble and TLV header from r, leaving the reader
// positioned at the start of the record stream.
func Open(r io.Reader, logger log.Logger) (*Reader, error) {
	br := bufio.NewReader(r)

	var preamble [4]byte
	if _, err := io.ReadFull(br, preamble[:]); err != nil {
		return nil, netflow.ErrCorruptStream
	}
	if preamble[0] != Magic1 || preamble[1] != Magic2 {
		return nil, netflow.ErrCorruptStream
	}
	if preamble[3] == FT1 {
		return nil, netflow.ErrUnsupportedStreamVersion
	}
	if preamble[3] != FT3 {
		return nil, netflow.ErrUnsupportedStreamVersion
	}

	hdr, _, err := decodeHeaderFromReader(br)
	if err != nil {
		return nil, err
	}
	hdr.ByteOrderByte = preamble[2]
	hdr.StreamVersion = preamble[3]

	size, err := hdr.recordSize()
	if err != nil {
		return nil, err
	}

	reader := &Reader{Header: hdr, recordSize: size, src: br, logger: log.NewHelper(logger)}
	if hdr.Flags&FlagCompress != 0 {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, netflow.ErrCorruptStream
		}
		reader.zr = zr
		reader.src = zr
	}
	return reader, nil
}

func decodeHeaderFromReader(r io.Reader) (*Header, int, error) {
	hdr := &Header{IfNames: make(map[uint32]string), IfAliases: make(map[uint32]string)}
	var headBytes int
	for {
		var head [8]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return nil, 0, netflow.ErrCorruptStream
		}
		tag := tlvTag(binary.BigEndian.Uint32(head[0:4]))
		length := binary.BigEndian.Uint32(head[4:8])
		headBytes += 8

		value := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(r, value); err != nil {
				return nil, 0, netflow.ErrCorruptStream
			}
		}
		headBytes += int(length)

		if tag == tagInterrupt && length == 0 {
			break
		}
		applyTLV(hdr, tag, value)
	}
	if !hdr.hasRequired() {
		return nil, 0, netflow.ErrCorruptStream
	}
	return hdr, headBytes, nil
}

// ReadRecord returns the next raw record, or io.EOF at a clean stream end.
// An EOF arriving mid-record, rather than exactly at a record boundary,
// reports ErrTruncatedStream instead.
func (r *Reader) ReadRecord() ([]byte, error) {
	buf := make([]byte, r.recordSize)
	n, err := io.ReadFull(r.src, buf)
	switch {
	case err == io.EOF && n == 0:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF || (err == io.EOF && n > 0):
		r.logger.Warnw("stream ended mid-record", "bytes_read", n, "record_size", r.recordSize)
		return nil, netflow.ErrTruncatedStream
	case err != nil:
		return nil, err
	}
	return buf, nil
}

// Close releases any decompression state held by the reader.
func (r *Reader) Close() error {
	if r.zr != nil {
		return r.zr.Close()
	}
	return nil
}
