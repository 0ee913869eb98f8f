// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

// Translate converts src into the record shape of to, zeroing any field the
// destination version doesn't carry and leaving fields the source never had
// populated at their zero value. Translation between aggregated v8 methods
// and the per-flow versions is intentionally not supported: aggregation is
// lossy in one direction and ambiguous in the other, so it isn't a
// translation so much as a re-aggregation, out of scope here.
func Translate(src Record, to Version) (Record, error) {
	if to == V8 {
		return Record{}, ErrNoTranslation
	}
	if src.Version == V8 {
		return Record{}, ErrNoTranslation
	}
	if _, ok := variants[to]; !ok {
		return Record{}, ErrUnknownVersion
	}

	dst := Record{
		Version:   to,
		UnixSecs:  src.UnixSecs,
		UnixNsecs: src.UnixNsecs,
		SysUptime: src.SysUptime,

		ExporterAddr: src.ExporterAddr,
		SrcAddr:      src.SrcAddr,
		DstAddr:      src.DstAddr,
		NextHop:      src.NextHop,

		Input:  src.Input,
		Output: src.Output,

		Packets: src.Packets,
		Octets:  src.Octets,
		First:   src.First,
		Last:    src.Last,

		SrcPort: src.SrcPort,
		DstPort: src.DstPort,

		Protocol: src.Protocol,
		TOS:      src.TOS,
		TCPFlags: src.TCPFlags,
	}

	if to == V1 {
		return dst, nil
	}

	// Every non-v1 destination carries the v5 base fields.
	dst.EngineType = src.EngineType
	dst.EngineID = src.EngineID
	dst.SrcMask = src.SrcMask
	dst.DstMask = src.DstMask
	dst.SrcAS = src.SrcAS
	dst.DstAS = src.DstAS

	switch to {
	case V6:
		dst.InEncaps = src.InEncaps
		dst.OutEncaps = src.OutEncaps
		dst.PeerNextHop = src.PeerNextHop
	case V7:
		dst.RouterSc = src.RouterSc
	case V1005:
		dst.SrcTag = src.SrcTag
		dst.DstTag = src.DstTag
	}
	return dst, nil
}
