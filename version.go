// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

// Version identifies the wire export format of a PDU, or the internal
// record format produced by the tag engine.
type Version uint16

// Supported export versions. V1005 is not a PDU wire format; it is the
// internal "tagged v5" record the tag engine produces once SrcTag/DstTag
// have been assigned.
const (
	V1    Version = 1
	V5    Version = 5
	V6    Version = 6
	V7    Version = 7
	V8    Version = 8
	V1005 Version = 1005
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V5:
		return "v5"
	case V6:
		return "v6"
	case V7:
		return "v7"
	case V8:
		return "v8"
	case V1005:
		return "v1005"
	default:
		return "unknown"
	}
}

// AggMethod identifies one of the fourteen NetFlow v8 aggregation schemes.
// It is meaningless outside a V8 PDU.
type AggMethod uint8

// The fourteen v8 aggregation methods, matching FT_PDU_V8_*_VERSION in the
// original C export library.
const (
	AggAS            AggMethod = 1
	AggProtoPort     AggMethod = 2
	AggSrcPrefix     AggMethod = 3
	AggDstPrefix     AggMethod = 4
	AggPrefix        AggMethod = 5
	AggDestOnly      AggMethod = 6
	AggSrcDest       AggMethod = 7
	AggFullFlow      AggMethod = 8
	AggASTOS         AggMethod = 9
	AggProtoPortTOS  AggMethod = 10
	AggSrcPrefixTOS  AggMethod = 11
	AggDstPrefixTOS  AggMethod = 12
	AggPrefixTOS     AggMethod = 13
	AggPrefixPortTOS AggMethod = 14
)

func (a AggMethod) String() string {
	switch a {
	case AggAS:
		return "AS"
	case AggProtoPort:
		return "ProtoPort"
	case AggSrcPrefix:
		return "SrcPrefix"
	case AggDstPrefix:
		return "DstPrefix"
	case AggPrefix:
		return "Prefix"
	case AggDestOnly:
		return "DestOnly"
	case AggSrcDest:
		return "SrcDest"
	case AggFullFlow:
		return "FullFlow"
	case AggASTOS:
		return "AS+TOS"
	case AggProtoPortTOS:
		return "ProtoPort+TOS"
	case AggSrcPrefixTOS:
		return "SrcPrefix+TOS"
	case AggDstPrefixTOS:
		return "DstPrefix+TOS"
	case AggPrefixTOS:
		return "Prefix+TOS"
	case AggPrefixPortTOS:
		return "Prefix+Port+TOS"
	default:
		return "unknown"
	}
}

// AggVersion is the v8 "aggregation version" byte this package produces and
// expects; matches FT_PDU_V8_*_VERSION (all methods share version 2).
const AggVersion = 2

// variantInfo describes one wire variant: header/record sizes in bytes, the
// maximum flow count a PDU may carry, whether trailing pad bytes beyond
// recordSize should be tolerated (the Catalyst-padded v8 methods 6-8), and
// which Record fields it populates.
type variantInfo struct {
	headerSize int
	recordSize int
	maxFlows   int
	padded     bool
	fields     FieldSet
}

const fieldsV1Base = FieldUnixSecs | FieldUnixNsecs | FieldSysUptime |
	FieldExporterAddr | FieldSrcAddr | FieldDstAddr | FieldNextHop |
	FieldInput | FieldOutput | FieldPackets | FieldOctets | FieldFirst |
	FieldLast | FieldSrcPort | FieldDstPort | FieldProtocol | FieldTOS |
	FieldTCPFlags

const fieldsV5Base = fieldsV1Base | FieldEngineType | FieldEngineID |
	FieldSrcMask | FieldDstMask | FieldSrcAS | FieldDstAS

var variants = map[Version]variantInfo{
	V1: {headerSize: 16, recordSize: 48, maxFlows: 24, fields: fieldsV1Base},
	V5: {headerSize: 24, recordSize: 48, maxFlows: 30, fields: fieldsV5Base},
	V6: {headerSize: 24, recordSize: 52, maxFlows: 27,
		fields: fieldsV5Base | FieldInEncaps | FieldOutEncaps | FieldPeerNextHop},
	V7: {headerSize: 24, recordSize: 52, maxFlows: 27,
		fields: fieldsV5Base | FieldRouterSc},
	V1005: {headerSize: 24, recordSize: 56, maxFlows: 30,
		fields: fieldsV5Base | FieldSrcTag | FieldDstTag},
}

const fieldsV8Aggregate = FieldUnixSecs | FieldUnixNsecs | FieldSysUptime |
	FieldExporterAddr | FieldFlows | FieldPackets | FieldOctets | FieldFirst |
	FieldLast | FieldEngineType | FieldEngineID

var v8Variants = map[AggMethod]variantInfo{
	AggAS: {headerSize: 28, recordSize: 28, maxFlows: 51,
		fields: fieldsV8Aggregate | FieldSrcAS | FieldDstAS | FieldInput | FieldOutput},
	AggProtoPort: {headerSize: 28, recordSize: 28, maxFlows: 51,
		fields: fieldsV8Aggregate | FieldProtocol | FieldSrcPort | FieldDstPort},
	AggSrcPrefix: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldSrcMask | FieldSrcAS | FieldInput},
	AggDstPrefix: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldDstAddr | FieldDstMask | FieldDstAS | FieldOutput},
	AggPrefix: {headerSize: 28, recordSize: 40, maxFlows: 35,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldDstAddr | FieldSrcMask |
			FieldDstMask | FieldSrcAS | FieldDstAS | FieldInput | FieldOutput},
	AggDestOnly: {headerSize: 28, recordSize: 32, maxFlows: 44, padded: true,
		fields: fieldsV8Aggregate | FieldDstAddr | FieldOutput | FieldTOS |
			FieldMarkedTOS | FieldExtraPackets | FieldRouterSc},
	AggSrcDest: {headerSize: 28, recordSize: 40, maxFlows: 35, padded: true,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldDstAddr | FieldInput |
			FieldOutput | FieldTOS | FieldMarkedTOS | FieldExtraPackets | FieldRouterSc},
	AggFullFlow: {headerSize: 28, recordSize: 44, maxFlows: 32, padded: true,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldDstAddr | FieldSrcPort |
			FieldDstPort | FieldInput | FieldOutput | FieldTOS | FieldMarkedTOS |
			FieldProtocol | FieldExtraPackets | FieldRouterSc},
	AggASTOS: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldSrcAS | FieldDstAS | FieldInput | FieldOutput | FieldTOS},
	AggProtoPortTOS: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldSrcPort | FieldDstPort | FieldInput |
			FieldOutput | FieldProtocol | FieldTOS},
	AggSrcPrefixTOS: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldSrcMask | FieldSrcAS | FieldInput | FieldTOS},
	AggDstPrefixTOS: {headerSize: 28, recordSize: 32, maxFlows: 44,
		fields: fieldsV8Aggregate | FieldDstAddr | FieldDstMask | FieldDstAS | FieldOutput | FieldTOS},
	AggPrefixTOS: {headerSize: 28, recordSize: 40, maxFlows: 35,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldDstAddr | FieldSrcMask |
			FieldDstMask | FieldSrcAS | FieldDstAS | FieldInput | FieldOutput | FieldTOS},
	AggPrefixPortTOS: {headerSize: 28, recordSize: 40, maxFlows: 35,
		fields: fieldsV8Aggregate | FieldSrcAddr | FieldDstAddr | FieldSrcPort |
			FieldDstPort | FieldInput | FieldOutput | FieldSrcMask | FieldDstMask |
			FieldTOS | FieldProtocol},
}

// lookupVariant resolves the wire layout for version (and, for V8, agg).
func lookupVariant(version Version, agg AggMethod) (variantInfo, bool) {
	if version == V8 {
		vi, ok := v8Variants[agg]
		return vi, ok
	}
	vi, ok := variants[version]
	return vi, ok
}

// RecordSize reports the fixed wire-record size in bytes for the given
// version (and, for V8, aggregation method), for callers outside this
// package that frame a record stream (stream.Reader/Writer, fileset).
func RecordSize(version Version, agg AggMethod) (int, bool) {
	vi, ok := lookupVariant(version, agg)
	if !ok {
		return 0, false
	}
	return vi.recordSize, true
}
