// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import "encoding/binary"

// ByteOrder selects how Decode stores multi-byte record fields. PDUs always
// arrive big-endian on the wire (per the NetFlow export spec); ByteOrder
// controls only how Decode leaves them in memory, mirroring the original
// library's host-order swap-on-read optimization for capture files that are
// read back on the same architecture that wrote them.
type ByteOrder uint8

// Supported in-memory byte orders. The zero value is BigEndian, i.e. "leave
// wire order alone."
const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) order() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// swap16 reorders a big-endian wire uint16 into order's representation.
func swap16(order binary.ByteOrder, v uint16) uint16 {
	if order == binary.BigEndian {
		return v
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.LittleEndian.Uint16(b[:])
}

// swap32 reorders a big-endian wire uint32 into order's representation.
func swap32(order binary.ByteOrder, v uint32) uint32 {
	if order == binary.BigEndian {
		return v
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return binary.LittleEndian.Uint32(b[:])
}
