// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package tag implements the tag engine: an ordered list of definitions,
// each a list of filtered terms, each carrying actions that assign the
// src/dst tag fields of a Record based on one of several match classes.
package tag

import (
	"fmt"
	"net"

	"github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/radix"
)

// MatchClass selects which Record field(s) an Action keys off of, and
// which lookup structure the Engine uses to index it.
type MatchClass uint8

// Supported match classes.
const (
	ClassSrcAS MatchClass = iota
	ClassDstAS
	ClassAS
	ClassSrcPrefix
	ClassDstPrefix
	ClassPrefix
	ClassNextHop
	ClassExporter
	ClassSrcIP
	ClassDstIP
	ClassIP
	ClassTCPSrcPort
	ClassTCPDstPort
	ClassTCPPort
	ClassUDPSrcPort
	ClassUDPDstPort
	ClassUDPPort
	ClassTOS
	ClassInInterface
	ClassOutInterface
	ClassInterface
	ClassAny
)

// Direction selects which tag field (src_tag or dst_tag) an assignment
// targets.
type Direction uint8

// Tag directions.
const (
	DirSrc Direction = iota
	DirDst
)

// SetOp selects how an assignment combines with whatever the tag field
// already holds: Set overrides it, Or composes via bitwise OR.
type SetOp uint8

// Supported set operations.
const (
	OpSet SetOp = iota
	OpOr
)

// Assignment is one (direction, operation, value) tag write.
type Assignment struct {
	Dir   Direction
	Op    SetOp
	Value uint32
}

// Action binds a match key (interpreted according to Class) to the
// assignments it triggers.
type Action struct {
	Class MatchClass
	// Key holds the match value: uint16 for AS/port/interface classes,
	// uint8 for ClassTOS, *net.IPNet for the prefix classes, net.IP for
	// the hash-keyed classes (next-hop, exporter, ip), and nil for
	// ClassAny.
	Key         interface{}
	Assignments []Assignment
}

// Term gates a set of Actions behind optional exporter-IP and
// input/output interface predicates.
type Term struct {
	ExporterIP    net.IP
	InputFilter   *Bitmap
	OutputFilter  *Bitmap
	Actions       []Action
}

// Definition is an ordered list of Terms, evaluated in order; every term
// whose filters admit a record runs its actions (there is no tag-engine
// stop flag — that belongs to the translate engine).
type Definition struct {
	Terms []*Term
}

type boundAction struct {
	action *Action
	term   *Term
}

// Engine evaluates an ordered tag configuration against records,
// maintaining the per-match-class lookup structures the actions are
// indexed into.
type Engine struct {
	definitions []*Definition

	srcASTable    map[uint16][]boundAction
	dstASTable    map[uint16][]boundAction
	prefixTrie    *radix.Trie
	nextHopTable  map[string][]boundAction
	exporterTable map[string][]boundAction
	ipTable       map[string][]boundAction
	tcpPortTable  map[uint16][]boundAction
	udpPortTable  map[uint16][]boundAction
	tosTable      [256][]boundAction
	ifaceTable    map[uint16][]boundAction
	anyActions    []boundAction
}

// NewEngine returns an empty tag engine.
func NewEngine() *Engine {
	return &Engine{
		srcASTable:    make(map[uint16][]boundAction),
		dstASTable:    make(map[uint16][]boundAction),
		prefixTrie:    radix.New(),
		nextHopTable:  make(map[string][]boundAction),
		exporterTable: make(map[string][]boundAction),
		ipTable:       make(map[string][]boundAction),
		tcpPortTable:  make(map[uint16][]boundAction),
		udpPortTable:  make(map[uint16][]boundAction),
		ifaceTable:    make(map[uint16][]boundAction),
	}
}

// AddDefinition appends def to the engine's ordered configuration and
// indexes every action in it into the relevant lookup structure.
func (e *Engine) AddDefinition(def *Definition) error {
	for _, term := range def.Terms {
		for i := range term.Actions {
			action := &term.Actions[i]
			if err := e.index(action, term); err != nil {
				return err
			}
		}
	}
	e.definitions = append(e.definitions, def)
	return nil
}

func (e *Engine) index(action *Action, term *Term) error {
	ba := boundAction{action: action, term: term}
	switch action.Class {
	case ClassSrcAS, ClassDstAS, ClassAS:
		key, ok := action.Key.(uint16)
		if !ok {
			return fmt.Errorf("tag: %v action requires a uint16 AS key", action.Class)
		}
		// ClassSrcAS/ClassDstAS are independent lookups keyed on their own
		// record field; ClassAS matches either field, so it is indexed
		// into both tables rather than a single shared one.
		if action.Class == ClassSrcAS || action.Class == ClassAS {
			e.srcASTable[key] = append(e.srcASTable[key], ba)
		}
		if action.Class == ClassDstAS || action.Class == ClassAS {
			e.dstASTable[key] = append(e.dstASTable[key], ba)
		}
	case ClassSrcPrefix, ClassDstPrefix, ClassPrefix:
		prefix, ok := action.Key.(*net.IPNet)
		if !ok {
			return fmt.Errorf("tag: %v action requires a *net.IPNet key", action.Class)
		}
		ones, _ := prefix.Mask.Size()
		addr := ip4ToUint32(prefix.IP)
		var existing []boundAction
		if v, err := e.prefixTrie.Lookup(addr, uint8(ones)); err == nil {
			existing = v.([]boundAction)
			e.prefixTrie.Delete(addr, uint8(ones))
		}
		existing = append(existing, ba)
		return e.prefixTrie.Add(addr, uint8(ones), existing)
	case ClassNextHop:
		key := action.Key.(net.IP).String()
		e.nextHopTable[key] = append(e.nextHopTable[key], ba)
	case ClassExporter:
		key := action.Key.(net.IP).String()
		e.exporterTable[key] = append(e.exporterTable[key], ba)
	case ClassSrcIP, ClassDstIP, ClassIP:
		key := action.Key.(net.IP).String()
		e.ipTable[key] = append(e.ipTable[key], ba)
	case ClassTCPSrcPort, ClassTCPDstPort, ClassTCPPort:
		key := action.Key.(uint16)
		e.tcpPortTable[key] = append(e.tcpPortTable[key], ba)
	case ClassUDPSrcPort, ClassUDPDstPort, ClassUDPPort:
		key := action.Key.(uint16)
		e.udpPortTable[key] = append(e.udpPortTable[key], ba)
	case ClassTOS:
		key := action.Key.(uint8)
		e.tosTable[key] = append(e.tosTable[key], ba)
	case ClassInInterface, ClassOutInterface, ClassInterface:
		key := action.Key.(uint16)
		e.ifaceTable[key] = append(e.ifaceTable[key], ba)
	case ClassAny:
		e.anyActions = append(e.anyActions, ba)
	default:
		return fmt.Errorf("tag: unknown match class %v", action.Class)
	}
	return nil
}

func ip4ToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
}

// Apply evaluates rec against every matching action (admitted by its
// term's filters) and returns the SrcTag/DstTag values to write back; rec
// itself is not mutated. Actions run grouped by lookup table (AS, prefix,
// next-hop, exporter, IP, TCP, UDP, TOS, interface, then any), not in
// definition order.
func (e *Engine) Apply(rec netflow.Record) (srcTag, dstTag uint32) {
	candidates := e.candidates(rec)
	for _, ba := range candidates {
		if !e.admits(ba.term, rec) {
			continue
		}
		for _, asn := range ba.action.Assignments {
			apply(&srcTag, &dstTag, asn)
		}
	}
	return srcTag, dstTag
}

func apply(srcTag, dstTag *uint32, asn Assignment) {
	target := srcTag
	if asn.Dir == DirDst {
		target = dstTag
	}
	if asn.Op == OpSet {
		*target = asn.Value
	} else {
		*target |= asn.Value
	}
}

func (e *Engine) candidates(rec netflow.Record) []boundAction {
	var out []boundAction
	out = append(out, e.srcASTable[rec.SrcAS]...)
	out = append(out, e.dstASTable[rec.DstAS]...)
	if v, err := e.prefixTrie.SearchBest(ip4ToUint32(rec.SrcAddr)); err == nil {
		out = append(out, v.([]boundAction)...)
	}
	if v, err := e.prefixTrie.SearchBest(ip4ToUint32(rec.DstAddr)); err == nil {
		out = append(out, v.([]boundAction)...)
	}
	if rec.NextHop != nil {
		out = append(out, e.nextHopTable[rec.NextHop.String()]...)
	}
	if rec.ExporterAddr != nil {
		out = append(out, e.exporterTable[rec.ExporterAddr.String()]...)
	}
	if rec.SrcAddr != nil {
		out = append(out, e.ipTable[rec.SrcAddr.String()]...)
	}
	if rec.DstAddr != nil {
		out = append(out, e.ipTable[rec.DstAddr.String()]...)
	}
	if rec.Protocol == 6 {
		out = append(out, e.tcpPortTable[rec.SrcPort]...)
		out = append(out, e.tcpPortTable[rec.DstPort]...)
	}
	if rec.Protocol == 17 {
		out = append(out, e.udpPortTable[rec.SrcPort]...)
		out = append(out, e.udpPortTable[rec.DstPort]...)
	}
	out = append(out, e.tosTable[rec.TOS]...)
	out = append(out, e.ifaceTable[rec.Input]...)
	out = append(out, e.ifaceTable[rec.Output]...)
	out = append(out, e.anyActions...)
	return out
}

func (e *Engine) admits(term *Term, rec netflow.Record) bool {
	if term.ExporterIP != nil && !term.ExporterIP.Equal(rec.ExporterAddr) {
		return false
	}
	if term.InputFilter != nil && !term.InputFilter.Test(rec.Input) {
		return false
	}
	if term.OutputFilter != nil && !term.OutputFilter.Test(rec.Output) {
		return false
	}
	return true
}
