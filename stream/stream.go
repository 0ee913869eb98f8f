// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package stream implements the FT3 on-disk container: a self-describing
// TLV header followed by a run of fixed-size flow records, optionally
// zlib-compressed.
package stream

import (
	"net"
	"time"

	"github.com/flow-tools/ft3"
)

// Magic bytes identifying an FT stream file.
const (
	Magic1 = 0xCF
	Magic2 = 0x10
)

// ByteOrderByte values occupying header byte 2.
const (
	OrderLittleEndian = 1
	OrderBigEndian    = 2
)

// StreamVersion values occupying header byte 3.
const (
	FT1 = 1 // legacy fixed-layout header; Open and OpenMapped reject it
	FT3 = 3 // TLV header, current format
)

// Z_BUFSIZE is the original library's inflate/deflate buffer size. Reader
// and Writer do not size any buffer with it.
const Z_BUFSIZE = 16384

// D_BUFSIZE is the original library's record staging buffer size. Writer
// has no staging buffer; each record goes straight to the destination or
// the deflate stage.
const D_BUFSIZE = 32768

// Flags is the header_flags TLV bitset.
type Flags uint32

// Header flag bits, matching FT_HEADER_FLAG_* in the original library.
const (
	FlagDone Flags = 1 << iota
	FlagCompress
	_ // FT_HEADER_FLAG_MULT_PDU, never used on the wire
	FlagStreaming
	FlagXlate
	FlagPreloaded
)

// Header is the parsed form of an FT3 file's TLV section.
type Header struct {
	ByteOrderByte  uint8
	StreamVersion  uint8
	Flags          Flags
	Version        netflow.Version
	AggMethod      netflow.AggMethod
	AggVersion     uint8
	ExporterIP     net.IP
	CaptureStart   time.Time
	CaptureEnd     time.Time
	FlowCount      uint64
	FlowLost       uint64
	Misordered     uint64
	PktCorrupt     uint64
	SeqReset       uint64
	CaptureHost    string
	Comments       string
	IfNames        map[uint32]string
	IfAliases      map[uint32]string
	RotateSchedule string

	// seen tracks which TLVs were actually present, so Reader.Open can
	// enforce the required-field invariant (version, capture start).
	seen fieldSet
}

type fieldSet uint32

const (
	seenVersion fieldSet = 1 << iota
	seenCaptureStart
)

func (h *Header) markSeen(f fieldSet) { h.seen |= f }
func (h *Header) hasRequired() bool {
	const required = seenVersion | seenCaptureStart
	return h.seen&required == required
}

// recordSize returns the fixed wire-record size for this header's
// declared (version, agg method), used to frame the record stream.
func (h *Header) recordSize() (int, error) {
	size, ok := netflow.RecordSize(h.Version, h.AggMethod)
	if !ok {
		return 0, netflow.ErrUnknownVersion
	}
	return size, nil
}
