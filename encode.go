// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import (
	"encoding/binary"
)

// Encode serializes records into a single PDU. All records must share the
// same Version (and, for V8, AggMethod) and the same EngineType/EngineID;
// use PDUWriter to batch a mixed stream of records into PDUs automatically.
func Encode(records []Record, seq uint32) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrShortPDU
	}
	version := records[0].Version
	agg := records[0].AggMethod
	vi, ok := lookupVariant(version, agg)
	if !ok {
		return nil, ErrUnknownVersion
	}
	if len(records) > vi.maxFlows {
		return nil, ErrCountExceeded
	}

	buf := make([]byte, vi.headerSize+len(records)*vi.recordSize)
	encodeHeader(buf, version, agg, records[0], seq, len(records))

	for i, rec := range records {
		off := vi.headerSize + i*vi.recordSize
		encodeRecord(buf[off:off+vi.recordSize], version, agg, rec)
	}
	return buf, nil
}

func encodeHeader(buf []byte, version Version, agg AggMethod, rec Record, seq uint32, count int) {
	binary.BigEndian.PutUint16(buf[0:2], uint16(version))
	binary.BigEndian.PutUint16(buf[2:4], uint16(count))
	binary.BigEndian.PutUint32(buf[4:8], rec.SysUptime)
	binary.BigEndian.PutUint32(buf[8:12], rec.UnixSecs)
	binary.BigEndian.PutUint32(buf[12:16], rec.UnixNsecs)
	if len(buf) < 24 {
		return
	}
	binary.BigEndian.PutUint32(buf[16:20], seq)
	buf[20] = rec.EngineType
	buf[21] = rec.EngineID
	if version == V8 {
		buf[22] = uint8(agg)
		buf[23] = AggVersion
	}
}

func putIP4(b []byte, ip []byte) {
	if len(ip) >= 4 {
		copy(b, ip[len(ip)-4:])
	}
}

// EncodeRecord serializes a single record's body (no PDU header), sized per
// RecordSize(rec.Version, rec.AggMethod). Used by callers that frame
// records themselves, such as the stream package's fixed-size record runs.
func EncodeRecord(rec Record) ([]byte, error) {
	size, ok := RecordSize(rec.Version, rec.AggMethod)
	if !ok {
		return nil, ErrUnknownVersion
	}
	buf := make([]byte, size)
	encodeRecord(buf, rec.Version, rec.AggMethod, rec)
	return buf, nil
}

func encodeRecord(b []byte, version Version, agg AggMethod, rec Record) {
	switch version {
	case V1:
		putIP4(b[0:4], rec.SrcAddr)
		putIP4(b[4:8], rec.DstAddr)
		putIP4(b[8:12], rec.NextHop)
		binary.BigEndian.PutUint16(b[12:14], rec.Input)
		binary.BigEndian.PutUint16(b[14:16], rec.Output)
		binary.BigEndian.PutUint32(b[16:20], rec.Packets)
		binary.BigEndian.PutUint32(b[20:24], rec.Octets)
		binary.BigEndian.PutUint32(b[24:28], rec.First)
		binary.BigEndian.PutUint32(b[28:32], rec.Last)
		binary.BigEndian.PutUint16(b[32:34], rec.SrcPort)
		binary.BigEndian.PutUint16(b[34:36], rec.DstPort)
		b[37] = rec.Protocol
		b[38] = rec.TOS
		b[39] = rec.TCPFlags
	case V5, V6, V7, V1005:
		putIP4(b[0:4], rec.SrcAddr)
		putIP4(b[4:8], rec.DstAddr)
		putIP4(b[8:12], rec.NextHop)
		binary.BigEndian.PutUint16(b[12:14], rec.Input)
		binary.BigEndian.PutUint16(b[14:16], rec.Output)
		binary.BigEndian.PutUint32(b[16:20], rec.Packets)
		binary.BigEndian.PutUint32(b[20:24], rec.Octets)
		binary.BigEndian.PutUint32(b[24:28], rec.First)
		binary.BigEndian.PutUint32(b[28:32], rec.Last)
		binary.BigEndian.PutUint16(b[32:34], rec.SrcPort)
		binary.BigEndian.PutUint16(b[34:36], rec.DstPort)
		b[37] = rec.TCPFlags
		b[38] = rec.Protocol
		b[39] = rec.TOS
		binary.BigEndian.PutUint16(b[40:42], rec.SrcAS)
		binary.BigEndian.PutUint16(b[42:44], rec.DstAS)
		b[44] = rec.SrcMask
		b[45] = rec.DstMask
		switch version {
		case V6:
			b[46] = rec.InEncaps
			b[47] = rec.OutEncaps
			putIP4(b[48:52], rec.PeerNextHop)
		case V7:
			binary.BigEndian.PutUint32(b[48:52], rec.RouterSc)
		case V1005:
			binary.BigEndian.PutUint32(b[48:52], rec.SrcTag)
			binary.BigEndian.PutUint32(b[52:56], rec.DstTag)
		}
	case V8:
		encodeV8(b, agg, rec)
	}
}

func encodeV8(b []byte, agg AggMethod, rec Record) {
	switch agg {
	case AggAS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		binary.BigEndian.PutUint16(b[20:22], rec.SrcAS)
		binary.BigEndian.PutUint16(b[22:24], rec.DstAS)
		binary.BigEndian.PutUint16(b[24:26], rec.Input)
		binary.BigEndian.PutUint16(b[26:28], rec.Output)
	case AggProtoPort:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		b[20] = rec.Protocol
		binary.BigEndian.PutUint16(b[24:26], rec.SrcPort)
		binary.BigEndian.PutUint16(b[26:28], rec.DstPort)
	case AggSrcPrefix:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.SrcAddr)
		b[24] = rec.SrcMask
		binary.BigEndian.PutUint16(b[26:28], rec.SrcAS)
		binary.BigEndian.PutUint16(b[28:30], rec.Input)
	case AggDstPrefix:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.DstAddr)
		b[24] = rec.DstMask
		binary.BigEndian.PutUint16(b[26:28], rec.DstAS)
		binary.BigEndian.PutUint16(b[28:30], rec.Output)
	case AggPrefix:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.SrcAddr)
		putIP4(b[24:28], rec.DstAddr)
		b[28] = rec.DstMask
		b[29] = rec.SrcMask
		binary.BigEndian.PutUint16(b[32:34], rec.SrcAS)
		binary.BigEndian.PutUint16(b[34:36], rec.DstAS)
		binary.BigEndian.PutUint16(b[36:38], rec.Input)
		binary.BigEndian.PutUint16(b[38:40], rec.Output)
	case AggDestOnly:
		putIP4(b[0:4], rec.DstAddr)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		binary.BigEndian.PutUint16(b[20:22], rec.Output)
		b[22] = rec.TOS
		b[23] = rec.MarkedTOS
		binary.BigEndian.PutUint32(b[24:28], rec.ExtraPackets)
		binary.BigEndian.PutUint32(b[28:32], rec.RouterSc)
	case AggSrcDest:
		putIP4(b[0:4], rec.DstAddr)
		putIP4(b[4:8], rec.SrcAddr)
		binary.BigEndian.PutUint32(b[8:12], rec.Packets)
		binary.BigEndian.PutUint32(b[12:16], rec.Octets)
		binary.BigEndian.PutUint32(b[16:20], rec.First)
		binary.BigEndian.PutUint32(b[20:24], rec.Last)
		binary.BigEndian.PutUint16(b[24:26], rec.Output)
		binary.BigEndian.PutUint16(b[26:28], rec.Input)
		b[28] = rec.TOS
		b[29] = rec.MarkedTOS
		binary.BigEndian.PutUint32(b[32:36], rec.ExtraPackets)
		binary.BigEndian.PutUint32(b[36:40], rec.RouterSc)
	case AggFullFlow:
		putIP4(b[0:4], rec.DstAddr)
		putIP4(b[4:8], rec.SrcAddr)
		binary.BigEndian.PutUint16(b[8:10], rec.DstPort)
		binary.BigEndian.PutUint16(b[10:12], rec.SrcPort)
		binary.BigEndian.PutUint32(b[12:16], rec.Packets)
		binary.BigEndian.PutUint32(b[16:20], rec.Octets)
		binary.BigEndian.PutUint32(b[20:24], rec.First)
		binary.BigEndian.PutUint32(b[24:28], rec.Last)
		binary.BigEndian.PutUint16(b[28:30], rec.Output)
		binary.BigEndian.PutUint16(b[30:32], rec.Input)
		b[32] = rec.TOS
		b[33] = rec.Protocol
		b[34] = rec.MarkedTOS
		binary.BigEndian.PutUint32(b[36:40], rec.ExtraPackets)
		binary.BigEndian.PutUint32(b[40:44], rec.RouterSc)
	case AggASTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		binary.BigEndian.PutUint16(b[20:22], rec.SrcAS)
		binary.BigEndian.PutUint16(b[22:24], rec.DstAS)
		binary.BigEndian.PutUint16(b[24:26], rec.Input)
		binary.BigEndian.PutUint16(b[26:28], rec.Output)
		b[28] = rec.TOS
	case AggProtoPortTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		b[20] = rec.Protocol
		b[21] = rec.TOS
		binary.BigEndian.PutUint16(b[24:26], rec.SrcPort)
		binary.BigEndian.PutUint16(b[26:28], rec.DstPort)
		binary.BigEndian.PutUint16(b[28:30], rec.Input)
		binary.BigEndian.PutUint16(b[30:32], rec.Output)
	case AggSrcPrefixTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.SrcAddr)
		b[24] = rec.SrcMask
		b[25] = rec.TOS
		binary.BigEndian.PutUint16(b[26:28], rec.SrcAS)
		binary.BigEndian.PutUint16(b[28:30], rec.Input)
	case AggDstPrefixTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.DstAddr)
		b[24] = rec.DstMask
		b[25] = rec.TOS
		binary.BigEndian.PutUint16(b[26:28], rec.DstAS)
		binary.BigEndian.PutUint16(b[28:30], rec.Output)
	case AggPrefixTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.SrcAddr)
		putIP4(b[24:28], rec.DstAddr)
		b[28] = rec.DstMask
		b[29] = rec.SrcMask
		b[30] = rec.TOS
		binary.BigEndian.PutUint16(b[32:34], rec.SrcAS)
		binary.BigEndian.PutUint16(b[34:36], rec.DstAS)
		binary.BigEndian.PutUint16(b[36:38], rec.Input)
		binary.BigEndian.PutUint16(b[38:40], rec.Output)
	case AggPrefixPortTOS:
		binary.BigEndian.PutUint32(b[0:4], rec.Flows)
		binary.BigEndian.PutUint32(b[4:8], rec.Packets)
		binary.BigEndian.PutUint32(b[8:12], rec.Octets)
		binary.BigEndian.PutUint32(b[12:16], rec.First)
		binary.BigEndian.PutUint32(b[16:20], rec.Last)
		putIP4(b[20:24], rec.SrcAddr)
		putIP4(b[24:28], rec.DstAddr)
		binary.BigEndian.PutUint16(b[28:30], rec.SrcPort)
		binary.BigEndian.PutUint16(b[30:32], rec.DstPort)
		binary.BigEndian.PutUint16(b[32:34], rec.Input)
		binary.BigEndian.PutUint16(b[34:36], rec.Output)
		b[36] = rec.DstMask
		b[37] = rec.SrcMask
		b[38] = rec.TOS
		b[39] = rec.Protocol
	}
}

// PDUWriter batches a stream of records into PDUs grouped by
// (Version, AggMethod, EngineType, EngineID, SysUptime, UnixSecs,
// UnixNsecs), flushing automatically when the group changes or the
// version's maxFlows is reached. Mirrors the
// original export library's per-engine PDU batching.
type PDUWriter struct {
	seq     map[seqKey]uint32
	pending []Record
	flush   func([]byte) error
}

// NewPDUWriter returns a writer that calls flush with each completed PDU's
// encoded bytes.
func NewPDUWriter(flush func([]byte) error) *PDUWriter {
	return &PDUWriter{seq: make(map[seqKey]uint32), flush: flush}
}

// Write appends rec to the current batch, flushing the pending PDU first if
// rec belongs to a different group or the batch is full.
func (w *PDUWriter) Write(rec Record) error {
	if len(w.pending) > 0 {
		last := w.pending[0]
		vi, _ := lookupVariant(last.Version, last.AggMethod)
		sameGroup := last.Version == rec.Version && last.AggMethod == rec.AggMethod &&
			last.EngineType == rec.EngineType && last.EngineID == rec.EngineID &&
			last.SysUptime == rec.SysUptime && last.UnixSecs == rec.UnixSecs &&
			last.UnixNsecs == rec.UnixNsecs
		if !sameGroup || len(w.pending) >= vi.maxFlows {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	w.pending = append(w.pending, rec)
	return nil
}

// Flush encodes and emits any pending records as a single PDU.
func (w *PDUWriter) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	key := seqKey{w.pending[0].EngineType, w.pending[0].EngineID}
	w.seq[key]++
	buf, err := Encode(w.pending, w.seq[key])
	w.pending = w.pending[:0]
	if err != nil {
		return err
	}
	return w.flush(buf)
}
