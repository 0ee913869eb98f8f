// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/flow-tools/ft3"
)

type tlvTag = netflow.TLVField

const (
	tagVendor       = netflow.TLVVendor
	tagExportVer    = netflow.TLVExportVer
	tagAggVersion   = netflow.TLVAggVersion
	tagAggMethod    = netflow.TLVAggMethod
	tagExporterIP   = netflow.TLVExporterIP
	tagCaptureStart = netflow.TLVCaptureStart
	tagCaptureEnd   = netflow.TLVCaptureEnd
	tagHeaderFlags  = netflow.TLVHeaderFlags
	tagRotSchedule  = netflow.TLVRotSchedule
	tagFlowCount    = netflow.TLVFlowCount
	tagFlowLost     = netflow.TLVFlowLost
	tagMisordered   = netflow.TLVMisordered
	tagPktCorrupt   = netflow.TLVPktCorrupt
	tagSeqReset     = netflow.TLVSeqReset
	tagCapHostname  = netflow.TLVCapHostname
	tagComments     = netflow.TLVComments
	tagIfName       = netflow.TLVIfName
	tagIfAlias      = netflow.TLVIfAlias
	tagInterrupt    = netflow.TLVInterrupt
)

func writeTLV(buf *bytes.Buffer, tag tlvTag, value []byte) {
	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], uint32(tag))
	binary.BigEndian.PutUint32(head[4:8], uint32(len(value)))
	buf.Write(head[:])
	buf.Write(value)
}

func writeTLVUint64(buf *bytes.Buffer, tag tlvTag, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	writeTLV(buf, tag, b[:])
}

func writeTLVString(buf *bytes.Buffer, tag tlvTag, s string) {
	if s == "" {
		return
	}
	writeTLV(buf, tag, []byte(s))
}

// encodeHeaderWithFlagsOffset serializes hdr's TLVs, terminated by a zero-length
// INTERRUPT TLV marking the end of the header section. It returns the
// encoded bytes and the offset, within those bytes, of the header_flags
// TLV's 4-byte value, so a seekable Writer can rewrite flags in place on
// Close/Interrupt without re-serializing the whole header.
func encodeHeaderWithFlagsOffset(hdr *Header) ([]byte, int) {
	var buf bytes.Buffer

	var verBuf [2]byte
	binary.BigEndian.PutUint16(verBuf[:], uint16(hdr.Version))
	writeTLV(&buf, tagExportVer, verBuf[:])

	if hdr.Version == netflow.V8 {
		buf2 := []byte{uint8(hdr.AggMethod)}
		writeTLV(&buf, tagAggMethod, buf2)
		writeTLV(&buf, tagAggVersion, []byte{hdr.AggVersion})
	}
	if ip4 := hdr.ExporterIP.To4(); ip4 != nil {
		writeTLV(&buf, tagExporterIP, ip4)
	}

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(hdr.CaptureStart.Unix()))
	writeTLV(&buf, tagCaptureStart, tsBuf[:])
	if !hdr.CaptureEnd.IsZero() {
		binary.BigEndian.PutUint64(tsBuf[:], uint64(hdr.CaptureEnd.Unix()))
		writeTLV(&buf, tagCaptureEnd, tsBuf[:])
	}

	var flagBuf [4]byte
	binary.BigEndian.PutUint32(flagBuf[:], uint32(hdr.Flags))
	writeTLV(&buf, tagHeaderFlags, flagBuf[:])
	flagsOffset := buf.Len() - len(flagBuf)

	writeTLVUint64(&buf, tagFlowCount, hdr.FlowCount)
	writeTLVUint64(&buf, tagFlowLost, hdr.FlowLost)
	writeTLVUint64(&buf, tagMisordered, hdr.Misordered)
	writeTLVUint64(&buf, tagPktCorrupt, hdr.PktCorrupt)
	writeTLVUint64(&buf, tagSeqReset, hdr.SeqReset)

	writeTLVString(&buf, tagCapHostname, hdr.CaptureHost)
	writeTLVString(&buf, tagComments, hdr.Comments)
	writeTLVString(&buf, tagRotSchedule, hdr.RotateSchedule)

	for idx, name := range hdr.IfNames {
		var ifBuf [4]byte
		binary.BigEndian.PutUint32(ifBuf[:], idx)
		writeTLV(&buf, tagIfName, append(ifBuf[:], []byte(name)...))
	}
	for idx, alias := range hdr.IfAliases {
		var ifBuf [4]byte
		binary.BigEndian.PutUint32(ifBuf[:], idx)
		writeTLV(&buf, tagIfAlias, append(ifBuf[:], []byte(alias)...))
	}

	writeTLV(&buf, tagInterrupt, nil)
	return buf.Bytes(), flagsOffset
}

// decodeHeader reads TLVs from buf until an INTERRUPT tag (the header
// terminator), returning the parsed Header and the byte offset of the
// first record that follows. Running out of bytes before the terminator is
// an error.
func decodeHeader(buf []byte) (*Header, int, error) {
	hdr := &Header{
		IfNames:   make(map[uint32]string),
		IfAliases: make(map[uint32]string),
	}
	offset := 0
	for {
		if len(buf) < 8 {
			return nil, 0, fmt.Errorf("stream: truncated TLV header (%d bytes left)", len(buf))
		}
		tag := tlvTag(binary.BigEndian.Uint32(buf[0:4]))
		length := binary.BigEndian.Uint32(buf[4:8])
		buf = buf[8:]
		offset += 8
		if uint32(len(buf)) < length {
			return nil, 0, fmt.Errorf("stream: TLV tag %#x claims %d bytes, %d remain", tag, length, len(buf))
		}
		value := buf[:length]
		buf = buf[length:]
		offset += int(length)

		if tag == tagInterrupt && length == 0 {
			break
		}
		applyTLV(hdr, tag, value)
	}
	if !hdr.hasRequired() {
		return nil, 0, netflow.ErrCorruptStream
	}
	return hdr, offset, nil
}

func applyTLV(hdr *Header, tag tlvTag, value []byte) {
	switch tag {
	case tagExportVer:
		if len(value) >= 2 {
			hdr.Version = netflow.Version(binary.BigEndian.Uint16(value))
			hdr.markSeen(seenVersion)
		}
	case tagAggMethod:
		if len(value) >= 1 {
			hdr.AggMethod = netflow.AggMethod(value[0])
		}
	case tagAggVersion:
		if len(value) >= 1 {
			hdr.AggVersion = value[0]
		}
	case tagExporterIP:
		if len(value) >= 4 {
			hdr.ExporterIP = net.IP(append([]byte(nil), value[:4]...))
		}
	case tagCaptureStart:
		if len(value) >= 8 {
			hdr.CaptureStart = time.Unix(int64(binary.BigEndian.Uint64(value)), 0).UTC()
			hdr.markSeen(seenCaptureStart)
		}
	case tagCaptureEnd:
		if len(value) >= 8 {
			hdr.CaptureEnd = time.Unix(int64(binary.BigEndian.Uint64(value)), 0).UTC()
		}
	case tagHeaderFlags:
		if len(value) >= 4 {
			hdr.Flags = Flags(binary.BigEndian.Uint32(value))
		}
	case tagFlowCount:
		hdr.FlowCount = readU64(value)
	case tagFlowLost:
		hdr.FlowLost = readU64(value)
	case tagMisordered:
		hdr.Misordered = readU64(value)
	case tagPktCorrupt:
		hdr.PktCorrupt = readU64(value)
	case tagSeqReset:
		hdr.SeqReset = readU64(value)
	case tagCapHostname:
		hdr.CaptureHost = string(value)
	case tagComments:
		hdr.Comments = string(value)
	case tagRotSchedule:
		hdr.RotateSchedule = string(value)
	case tagIfName:
		if len(value) >= 4 {
			hdr.IfNames[binary.BigEndian.Uint32(value[:4])] = string(value[4:])
		}
	case tagIfAlias:
		if len(value) >= 4 {
			hdr.IfAliases[binary.BigEndian.Uint32(value[:4])] = string(value[4:])
		}
	}
}

func readU64(value []byte) uint64 {
	if len(value) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(value)
}
