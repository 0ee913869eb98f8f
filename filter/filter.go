// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package filter implements the filter evaluator: a list of match blocks
// (OR semantics between blocks), each a list of match items (AND semantics
// within a block), gating a PERMIT/DENY decision with an optional invert.
package filter

import (
	"net"

	"github.com/flow-tools/ft3"
)

// Kind selects which Record field (via the offset matrix) a match item
// tests.
type Kind uint8

// Supported match item kinds.
const (
	KindSrcPrefix Kind = iota
	KindDstPrefix
	KindSrcPort
	KindDstPort
	KindProtocol
	KindTOS
	KindTCPFlags
	KindTime
	KindPackets
	KindOctets
	KindRate
)

// Item is one typed predicate over a Record field.
type Item struct {
	Kind Kind

	// KindSrcPrefix / KindDstPrefix
	Prefix *net.IPNet

	// KindSrcPort / KindDstPort / KindTime / KindPackets / KindOctets /
	// KindRate: inclusive [Min, Max] range. A zero Max means unbounded.
	Min uint64
	Max uint64

	// KindProtocol / KindTOS
	Value uint8

	// KindTCPFlags: rec.TCPFlags&Mask == Want
	Mask uint8
	Want uint8
}

// Match reports whether rec satisfies item's predicate.
func (it Item) Match(rec netflow.Record) bool {
	switch it.Kind {
	case KindSrcPrefix:
		return it.Prefix != nil && it.Prefix.Contains(rec.SrcAddr)
	case KindDstPrefix:
		return it.Prefix != nil && it.Prefix.Contains(rec.DstAddr)
	case KindSrcPort:
		return inRange(uint64(rec.SrcPort), it.Min, it.Max)
	case KindDstPort:
		return inRange(uint64(rec.DstPort), it.Min, it.Max)
	case KindProtocol:
		return rec.Protocol == it.Value
	case KindTOS:
		return rec.TOS == it.Value
	case KindTCPFlags:
		return rec.TCPFlags&it.Mask == it.Want
	case KindTime:
		return inRange(uint64(rec.First), it.Min, it.Max) || inRange(uint64(rec.Last), it.Min, it.Max)
	case KindPackets:
		return inRange(uint64(rec.Packets), it.Min, it.Max)
	case KindOctets:
		return inRange(uint64(rec.Octets), it.Min, it.Max)
	case KindRate:
		return inRange(octetsPerSecond(rec), it.Min, it.Max)
	default:
		return false
	}
}

func inRange(v, min, max uint64) bool {
	if v < min {
		return false
	}
	if max == 0 {
		return true
	}
	return v <= max
}

// octetsPerSecond derives a flow's average byte rate from its duration
// (Last - First, both sysuptime milliseconds). A zero or negative duration
// (a single-packet flow, or a clock rollover the decoder didn't correct)
// is treated as an unmeasurable rate of zero rather than dividing by zero.
func octetsPerSecond(rec netflow.Record) uint64 {
	if rec.Last <= rec.First {
		return 0
	}
	durationMs := uint64(rec.Last - rec.First)
	return uint64(rec.Octets) * 1000 / durationMs
}

// Block is a list of Items combined with AND semantics: a block matches
// only if every item in it matches.
type Block struct {
	Items []Item
}

// Match reports whether rec satisfies every item in b.
func (b Block) Match(rec netflow.Record) bool {
	for _, it := range b.Items {
		if !it.Match(rec) {
			return false
		}
	}
	return true
}

// Mode selects the filter's top-level disposition for a matching record.
type Mode uint8

// Supported top-level filter modes.
const (
	ModePermit Mode = iota
	ModeDeny
)

// Filter is an ordered list of Blocks (OR semantics between blocks) plus a
// top-level PERMIT/DENY mode and an optional invert.
type Filter struct {
	Blocks []Block
	Mode   Mode
	Invert bool
}

// Evaluate reports whether rec is admitted by f: true means the record
// passes the filter, false means it is dropped.
func (f *Filter) Evaluate(rec netflow.Record) bool {
	matched := false
	for _, b := range f.Blocks {
		if b.Match(rec) {
			matched = true
			break
		}
	}
	if f.Invert {
		matched = !matched
	}
	if f.Mode == ModeDeny {
		return !matched
	}
	return matched
}
