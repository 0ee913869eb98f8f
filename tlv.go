// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import (
	"encoding/binary"
	"fmt"
)

// TLVField identifies one field in a stream header's tag-length-value
// section. Values match the FT_FIELD_* bit positions in the original
// export library so a capture's header flags can be read as a bitset.
type TLVField uint32

// Recognized TLV field tags.
const (
	TLVVendor       TLVField = 1 << 0
	TLVExportVer    TLVField = 1 << 1
	TLVAggVersion   TLVField = 1 << 2
	TLVAggMethod    TLVField = 1 << 3
	TLVExporterIP   TLVField = 1 << 4
	TLVCaptureStart TLVField = 1 << 5
	TLVCaptureEnd   TLVField = 1 << 6
	TLVHeaderFlags  TLVField = 1 << 7
	TLVRotSchedule  TLVField = 1 << 8
	TLVFlowCount    TLVField = 1 << 9
	TLVFlowLost     TLVField = 1 << 10
	TLVMisordered   TLVField = 1 << 11
	TLVPktCorrupt   TLVField = 1 << 12
	TLVSeqReset     TLVField = 1 << 13
	TLVCapHostname  TLVField = 1 << 14
	TLVComments     TLVField = 1 << 15
	TLVIfName       TLVField = 1 << 16
	TLVIfAlias      TLVField = 1 << 17
	TLVInterrupt    TLVField = 1 << 18
)

// tlvEntry is one decoded (tag, value) pair from a header's TLV section.
type tlvEntry struct {
	tag   TLVField
	value []byte
}

// encodeTLV appends one tag/length/value triple to buf: a uint32 tag, a
// uint32 length, then the raw value bytes.
func encodeTLV(buf []byte, tag TLVField, value []byte) []byte {
	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], uint32(tag))
	binary.BigEndian.PutUint32(head[4:8], uint32(len(value)))
	buf = append(buf, head[:]...)
	return append(buf, value...)
}

// decodeTLVs walks buf as a sequence of tag/length/value triples until
// exhausted, returning an error if a length would read past the end.
func decodeTLVs(buf []byte) ([]tlvEntry, error) {
	var entries []tlvEntry
	for len(buf) > 0 {
		if len(buf) < 8 {
			return nil, fmt.Errorf("netflow: truncated TLV header (%d bytes left)", len(buf))
		}
		tag := TLVField(binary.BigEndian.Uint32(buf[0:4]))
		length := binary.BigEndian.Uint32(buf[4:8])
		buf = buf[8:]
		if uint32(len(buf)) < length {
			return nil, fmt.Errorf("netflow: TLV tag %#x claims %d bytes, %d remain", tag, length, len(buf))
		}
		entries = append(entries, tlvEntry{tag: tag, value: buf[:length]})
		buf = buf[length:]
	}
	return entries, nil
}

func encodeTLVUint32(buf []byte, tag TLVField, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return encodeTLV(buf, tag, b[:])
}

func encodeTLVString(buf []byte, tag TLVField, s string) []byte {
	return encodeTLV(buf, tag, []byte(s))
}
