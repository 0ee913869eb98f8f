// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import (
	"encoding/binary"
	"net"
)

// Decode parses every record in a PDU already validated by Verify. hdr must
// have come from a Verify call against the same buf. opts may be nil, in
// which case decoding proceeds with package defaults (no AS substitution,
// no exporter IP stamp, no logging).
func Decode(hdr *Header, buf []byte, opts *Options) ([]Record, error) {
	if opts == nil {
		opts = defaultOptions()
	}
	logger := opts.logger()

	records := make([]Record, 0, hdr.Count)
	for i := 0; i < hdr.Count; i++ {
		off := hdr.headerSize + i*hdr.recordSize
		raw := buf[off : off+hdr.recordSize]

		var rec Record
		switch hdr.Version {
		case V1:
			rec = decodeV1(raw)
		case V5:
			rec = decodeV5Family(raw, V5)
		case V6:
			rec = decodeV6(raw)
		case V7:
			rec = decodeV7(raw)
		case V1005:
			rec = decodeV1005(raw)
		case V8:
			r, ok := decodeV8(raw, hdr.AggMethod)
			if !ok {
				logger.Errorw("unhandled v8 aggregation method", "method", hdr.AggMethod)
				return nil, ErrUnknownAggMethod
			}
			rec = r
		default:
			return nil, ErrUnknownVersion
		}

		rec.Version = hdr.Version
		rec.AggMethod = hdr.AggMethod
		rec.UnixSecs = hdr.UnixSecs
		rec.UnixNsecs = hdr.UnixNsecs
		rec.SysUptime = hdr.SysUptime
		rec.EngineType = hdr.EngineType
		rec.EngineID = hdr.EngineID
		// A mask length of 0 on the wire is read as 32 (a host route).
		fields := rec.Fields()
		if fields.Has(FieldSrcMask) && rec.SrcMask == 0 {
			rec.SrcMask = 32
		}
		if fields.Has(FieldDstMask) && rec.DstMask == 0 {
			rec.DstMask = 32
		}
		if opts.ExporterIP != nil {
			rec.ExporterAddr = opts.ExporterIP
		}
		if opts.ASSub {
			substituteAS0(&rec, opts.ASSubValue)
		}
		if opts.ByteOrder == LittleEndian {
			swapRecordPorts(&rec)
		}

		records = append(records, rec)
	}
	return records, nil
}

// substituteAS0 fills src_as/dst_as with value wherever the exporter left
// them at 0 (an AS it could not resolve), matching ftxlate's as0 tag
// option.
func substituteAS0(rec *Record, value uint16) {
	if rec.SrcAS == 0 {
		rec.SrcAS = value
	}
	if rec.DstAS == 0 {
		rec.DstAS = value
	}
}

// DecodeRecord parses a single record body (no PDU header) previously
// produced by EncodeRecord, stamping rec.Version/AggMethod on the result.
// Used by callers reading a framed record stream, such as the stream
// package's fixed-size record runs, that never see a PDU header at all.
func DecodeRecord(raw []byte, version Version, agg AggMethod) (Record, error) {
	var rec Record
	switch version {
	case V1:
		rec = decodeV1(raw)
	case V5:
		rec = decodeV5Family(raw, V5)
	case V6:
		rec = decodeV6(raw)
	case V7:
		rec = decodeV7(raw)
	case V1005:
		rec = decodeV1005(raw)
	case V8:
		r, ok := decodeV8(raw, agg)
		if !ok {
			return Record{}, ErrUnknownAggMethod
		}
		rec = r
	default:
		return Record{}, ErrUnknownVersion
	}
	rec.Version = version
	rec.AggMethod = agg
	return rec, nil
}

// swapRecordPorts flips the in-memory byte order of 16-bit record fields
// when the caller asked for LittleEndian records. 32-bit fields are left in
// big-endian order deliberately: translate.go and the tag/filter engines
// only ever compare them as opaque network-order values.
func swapRecordPorts(rec *Record) {
	order := binary.LittleEndian
	rec.Input = swap16(order, rec.Input)
	rec.Output = swap16(order, rec.Output)
	rec.SrcPort = swap16(order, rec.SrcPort)
	rec.DstPort = swap16(order, rec.DstPort)
	rec.SrcAS = swap16(order, rec.SrcAS)
	rec.DstAS = swap16(order, rec.DstAS)
}

func ip4(b []byte) net.IP {
	ip := make(net.IP, 4)
	copy(ip, b[:4])
	return ip
}

func u16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func u32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

func decodeV1(b []byte) Record {
	return Record{
		SrcAddr: ip4(b[0:4]), DstAddr: ip4(b[4:8]), NextHop: ip4(b[8:12]),
		Input: u16(b[12:14]), Output: u16(b[14:16]),
		Packets: u32(b[16:20]), Octets: u32(b[20:24]),
		First: u32(b[24:28]), Last: u32(b[28:32]),
		SrcPort: u16(b[32:34]), DstPort: u16(b[34:36]),
		Protocol: b[37], TOS: b[38], TCPFlags: b[39],
	}
}

func decodeV5Base(b []byte) Record {
	return Record{
		SrcAddr: ip4(b[0:4]), DstAddr: ip4(b[4:8]), NextHop: ip4(b[8:12]),
		Input: u16(b[12:14]), Output: u16(b[14:16]),
		Packets: u32(b[16:20]), Octets: u32(b[20:24]),
		First: u32(b[24:28]), Last: u32(b[28:32]),
		SrcPort: u16(b[32:34]), DstPort: u16(b[34:36]),
		TCPFlags: b[37], Protocol: b[38], TOS: b[39],
		SrcAS: u16(b[40:42]), DstAS: u16(b[42:44]),
		SrcMask: b[44], DstMask: b[45],
	}
}

func decodeV5Family(b []byte, version Version) Record {
	rec := decodeV5Base(b)
	return rec
}

func decodeV6(b []byte) Record {
	rec := decodeV5Base(b)
	rec.InEncaps = b[46]
	rec.OutEncaps = b[47]
	rec.PeerNextHop = ip4(b[48:52])
	return rec
}

func decodeV7(b []byte) Record {
	rec := decodeV5Base(b)
	rec.RouterSc = u32(b[48:52])
	return rec
}

func decodeV1005(b []byte) Record {
	rec := decodeV5Base(b)
	rec.SrcTag = u32(b[48:52])
	rec.DstTag = u32(b[52:56])
	return rec
}

func decodeV8(b []byte, agg AggMethod) (Record, bool) {
	switch agg {
	case AggAS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAS: u16(b[20:22]), DstAS: u16(b[22:24]),
			Input: u16(b[24:26]), Output: u16(b[26:28]),
		}, true
	case AggProtoPort:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			Protocol: b[20], SrcPort: u16(b[24:26]), DstPort: u16(b[26:28]),
		}, true
	case AggSrcPrefix:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAddr: ip4(b[20:24]), SrcMask: b[24], SrcAS: u16(b[26:28]),
			Input: u16(b[28:30]),
		}, true
	case AggDstPrefix:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			DstAddr: ip4(b[20:24]), DstMask: b[24], DstAS: u16(b[26:28]),
			Output: u16(b[28:30]),
		}, true
	case AggPrefix:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAddr: ip4(b[20:24]), DstAddr: ip4(b[24:28]),
			DstMask: b[28], SrcMask: b[29],
			SrcAS: u16(b[32:34]), DstAS: u16(b[34:36]),
			Input: u16(b[36:38]), Output: u16(b[38:40]),
		}, true
	case AggDestOnly:
		return Record{
			DstAddr: ip4(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			Output: u16(b[20:22]), TOS: b[22], MarkedTOS: b[23],
			ExtraPackets: u32(b[24:28]), RouterSc: u32(b[28:32]),
		}, true
	case AggSrcDest:
		return Record{
			DstAddr: ip4(b[0:4]), SrcAddr: ip4(b[4:8]),
			Packets: u32(b[8:12]), Octets: u32(b[12:16]),
			First: u32(b[16:20]), Last: u32(b[20:24]),
			Output: u16(b[24:26]), Input: u16(b[26:28]),
			TOS: b[28], MarkedTOS: b[29],
			ExtraPackets: u32(b[32:36]), RouterSc: u32(b[36:40]),
		}, true
	case AggFullFlow:
		return Record{
			DstAddr: ip4(b[0:4]), SrcAddr: ip4(b[4:8]),
			DstPort: u16(b[8:10]), SrcPort: u16(b[10:12]),
			Packets: u32(b[12:16]), Octets: u32(b[16:20]),
			First: u32(b[20:24]), Last: u32(b[24:28]),
			Output: u16(b[28:30]), Input: u16(b[30:32]),
			TOS: b[32], Protocol: b[33], MarkedTOS: b[34],
			ExtraPackets: u32(b[36:40]), RouterSc: u32(b[40:44]),
		}, true
	case AggASTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAS: u16(b[20:22]), DstAS: u16(b[22:24]),
			Input: u16(b[24:26]), Output: u16(b[26:28]), TOS: b[28],
		}, true
	case AggProtoPortTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			Protocol: b[20], TOS: b[21],
			SrcPort: u16(b[24:26]), DstPort: u16(b[26:28]),
			Input: u16(b[28:30]), Output: u16(b[30:32]),
		}, true
	case AggSrcPrefixTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAddr: ip4(b[20:24]), SrcMask: b[24], TOS: b[25],
			SrcAS: u16(b[26:28]), Input: u16(b[28:30]),
		}, true
	case AggDstPrefixTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			DstAddr: ip4(b[20:24]), DstMask: b[24], TOS: b[25],
			DstAS: u16(b[26:28]), Output: u16(b[28:30]),
		}, true
	case AggPrefixTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAddr: ip4(b[20:24]), DstAddr: ip4(b[24:28]),
			DstMask: b[28], SrcMask: b[29], TOS: b[30],
			SrcAS: u16(b[32:34]), DstAS: u16(b[34:36]),
			Input: u16(b[36:38]), Output: u16(b[38:40]),
		}, true
	case AggPrefixPortTOS:
		return Record{
			Flows: u32(b[0:4]), Packets: u32(b[4:8]), Octets: u32(b[8:12]),
			First: u32(b[12:16]), Last: u32(b[16:20]),
			SrcAddr: ip4(b[20:24]), DstAddr: ip4(b[24:28]),
			SrcPort: u16(b[28:30]), DstPort: u16(b[30:32]),
			Input: u16(b[32:34]), Output: u16(b[34:36]),
			DstMask: b[36], SrcMask: b[37], TOS: b[38], Protocol: b[39],
		}, true
	default:
		return Record{}, false
	}
}
