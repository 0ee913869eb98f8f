// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import "encoding/binary"

// Header is the parsed form of a PDU header, valid for every supported
// export version. Fields a given version doesn't carry on the wire
// (FlowSequence on v1, AggMethod/AggVersion on anything but v8) are left
// zero.
type Header struct {
	Version      Version
	Count        int
	SysUptime    uint32
	UnixSecs     uint32
	UnixNsecs    uint32
	FlowSequence uint32
	EngineType   uint8
	EngineID     uint8
	AggMethod    AggMethod
	AggVersion   uint8

	headerSize int
	recordSize int
	padded     bool
}

// Verify parses and validates a PDU header at the start of buf, checking
// that the declared count does not exceed the version's maximum flows and
// that len(buf) equals header+count*record exactly. Only the padded v8
// methods (AggDestOnly, AggSrcDest, AggFullFlow) accept a longer buffer;
// their trailing bytes are ignored. It does not decode any records; call
// Decode for that.
func Verify(buf []byte) (*Header, error) {
	if len(buf) < 2 {
		return nil, ErrShortPDU
	}
	version := Version(binary.BigEndian.Uint16(buf))

	switch version {
	case V1:
		return verifyFixed(buf, V1, 0)
	case V5:
		return verifyFixed(buf, V5, 0)
	case V6:
		return verifyFixed(buf, V6, 0)
	case V7:
		return verifyFixed(buf, V7, 0)
	case V8:
		return verifyV8(buf)
	default:
		return nil, ErrUnknownVersion
	}
}

func verifyFixed(buf []byte, version Version, agg AggMethod) (*Header, error) {
	vi, ok := lookupVariant(version, agg)
	if !ok {
		return nil, ErrUnknownVersion
	}
	if len(buf) < vi.headerSize {
		return nil, ErrShortPDU
	}
	count := int(binary.BigEndian.Uint16(buf[2:4]))
	if count > vi.maxFlows {
		return nil, ErrCountExceeded
	}
	need := vi.headerSize + count*vi.recordSize
	switch {
	case len(buf) < need:
		return nil, ErrTruncatedPDU
	case len(buf) != need && !vi.padded:
		return nil, ErrPDUSizeMismatch
	}

	h := &Header{
		Version:    version,
		Count:      count,
		SysUptime:  binary.BigEndian.Uint32(buf[4:8]),
		UnixSecs:   binary.BigEndian.Uint32(buf[8:12]),
		UnixNsecs:  binary.BigEndian.Uint32(buf[12:16]),
		headerSize: vi.headerSize,
		recordSize: vi.recordSize,
		padded:     vi.padded,
	}
	if vi.headerSize >= 24 {
		h.FlowSequence = binary.BigEndian.Uint32(buf[16:20])
		h.EngineType = buf[20]
		h.EngineID = buf[21]
	}
	return h, nil
}

func verifyV8(buf []byte) (*Header, error) {
	if len(buf) < 28 {
		return nil, ErrShortPDU
	}
	agg := AggMethod(buf[22])
	vi, ok := v8Variants[agg]
	if !ok {
		return nil, ErrUnknownAggMethod
	}
	count := int(binary.BigEndian.Uint16(buf[2:4]))
	if count > vi.maxFlows {
		return nil, ErrCountExceeded
	}
	need := vi.headerSize + count*vi.recordSize
	switch {
	case len(buf) < need:
		return nil, ErrTruncatedPDU
	case len(buf) != need && !vi.padded:
		return nil, ErrPDUSizeMismatch
	}

	// Juniper exporters have been observed writing 0 in agg_version where
	// every other v8 exporter writes 2; coerce it before validating.
	aggVersion := buf[23]
	if aggVersion == 0 {
		aggVersion = AggVersion
	}
	if aggVersion != AggVersion {
		return nil, ErrUnknownAggVersion
	}

	return &Header{
		Version:      V8,
		Count:        count,
		SysUptime:    binary.BigEndian.Uint32(buf[4:8]),
		UnixSecs:     binary.BigEndian.Uint32(buf[8:12]),
		UnixNsecs:    binary.BigEndian.Uint32(buf[12:16]),
		FlowSequence: binary.BigEndian.Uint32(buf[16:20]),
		EngineType:   buf[20],
		EngineID:     buf[21],
		AggMethod:    agg,
		AggVersion:   aggVersion,
		headerSize:   vi.headerSize,
		recordSize:   vi.recordSize,
		padded:       vi.padded,
	}, nil
}
