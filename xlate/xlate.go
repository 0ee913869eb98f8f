// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package xlate implements the translate engine: an ordered list of
// definitions, each a list of filtered terms, each carrying actions that
// mutate a Record's fields in place (masking, scaling, AS0 substitution,
// CryptoPAn anonymization).
package xlate

import (
	"net"

	"github.com/flow-tools/ft3"
)

// ActionKind selects which field-mutation an Action performs.
type ActionKind uint8

// Supported translate action kinds.
const (
	KindSrcAddrToNetwork ActionKind = iota
	KindDstAddrToNetwork
	KindSrcAddrToClassNetwork
	KindDstAddrToClassNetwork
	KindAddrPrivacyMask
	KindPortPrivacyMask
	KindTagMask
	KindScale
	KindReplaceSrcAS0
	KindReplaceDstAS0
	KindSrcAddrAnonymize
	KindDstAddrAnonymize
	KindAddrAnonymize
)

// Anonymizer anonymizes an IPv4 address while preserving prefix structure.
// cryptopan.Cipher implements this.
type Anonymizer interface {
	Anonymize(addr uint32) uint32
}

// Action is one field mutation, parameterized by Kind.
type Action struct {
	Kind ActionKind

	// KindSrcAddrToNetwork / KindDstAddrToNetwork
	MaskLen uint8

	// KindAddrPrivacyMask
	SrcAddrMask uint32
	DstAddrMask uint32

	// KindPortPrivacyMask
	SrcPortMask uint16
	DstPortMask uint16

	// KindTagMask
	SrcTagMask uint32
	DstTagMask uint32

	// KindScale
	ScaleFactor uint32

	// KindReplaceSrcAS0 / KindReplaceDstAS0
	ReplacementAS uint16

	// KindSrcAddrAnonymize / KindDstAddrAnonymize / KindAddrAnonymize
	Anonymizer Anonymizer
}

// Term gates a set of Actions behind optional predicates, same shape as
// tag.Term, plus a Stop flag: once an admitted term's actions run, later
// terms in the same Definition are skipped.
type Term struct {
	ExporterIP   net.IP
	InputFilter  *Bitmap
	OutputFilter *Bitmap
	Actions      []Action
	Stop         bool
}

// Definition is an ordered list of Terms.
type Definition struct {
	Terms []*Term
}

// Engine evaluates an ordered translate configuration, mutating records in
// place.
type Engine struct {
	definitions []*Definition
}

// NewEngine returns an empty translate engine.
func NewEngine() *Engine { return &Engine{} }

// AddDefinition appends def to the engine's ordered configuration.
func (e *Engine) AddDefinition(def *Definition) {
	e.definitions = append(e.definitions, def)
}

// Apply runs every admitted term's actions against rec, in definition
// order, honoring each term's Stop flag.
func (e *Engine) Apply(rec *netflow.Record) {
	for _, def := range e.definitions {
		for _, term := range def.Terms {
			if !admits(term, *rec) {
				continue
			}
			for _, action := range term.Actions {
				applyAction(action, rec)
			}
			if term.Stop {
				break
			}
		}
	}
}

func admits(term *Term, rec netflow.Record) bool {
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

func applyAction(a Action, rec *netflow.Record) {
	switch a.Kind {
	case KindSrcAddrToNetwork:
		rec.SrcAddr = maskIP(rec.SrcAddr, a.MaskLen)
	case KindDstAddrToNetwork:
		rec.DstAddr = maskIP(rec.DstAddr, a.MaskLen)
	case KindSrcAddrToClassNetwork:
		rec.SrcAddr = maskIP(rec.SrcAddr, classfulMaskLen(rec.SrcAddr))
	case KindDstAddrToClassNetwork:
		rec.DstAddr = maskIP(rec.DstAddr, classfulMaskLen(rec.DstAddr))
	case KindAddrPrivacyMask:
		rec.SrcAddr = andIP(rec.SrcAddr, a.SrcAddrMask)
		rec.DstAddr = andIP(rec.DstAddr, a.DstAddrMask)
	case KindPortPrivacyMask:
		rec.SrcPort &= a.SrcPortMask
		rec.DstPort &= a.DstPortMask
	case KindTagMask:
		rec.SrcTag &= a.SrcTagMask
		rec.DstTag &= a.DstTagMask
	case KindScale:
		rec.Packets *= a.ScaleFactor
		rec.Octets *= a.ScaleFactor
	case KindReplaceSrcAS0:
		if rec.SrcAS == 0 {
			rec.SrcAS = a.ReplacementAS
		}
	case KindReplaceDstAS0:
		if rec.DstAS == 0 {
			rec.DstAS = a.ReplacementAS
		}
	case KindSrcAddrAnonymize:
		rec.SrcAddr = anonymizeIP(rec.SrcAddr, a.Anonymizer)
	case KindDstAddrAnonymize:
		rec.DstAddr = anonymizeIP(rec.DstAddr, a.Anonymizer)
	case KindAddrAnonymize:
		rec.SrcAddr = anonymizeIP(rec.SrcAddr, a.Anonymizer)
		rec.DstAddr = anonymizeIP(rec.DstAddr, a.Anonymizer)
	}
}

func maskIP(ip net.IP, maskLen uint8) net.IP {
	if ip == nil {
		return ip
	}
	mask := net.CIDRMask(int(maskLen), 32)
	return ip.Mask(mask)
}

func andIP(ip net.IP, mask uint32) net.IP {
	if ip == nil {
		return ip
	}
	v := ip4ToUint32(ip) & mask
	return uint32ToIP4(v)
}

// classfulMaskLen returns the legacy class A/B/C network mask length for
// addr's leading octet: /8 for 0-127, /16 for 128-191, /24 for 192-223,
// and /32 (no aggregation) for anything else (class D/E).
func classfulMaskLen(addr net.IP) uint8 {
	ip4 := addr.To4()
	if ip4 == nil {
		return 32
	}
	switch {
	case ip4[0] < 128:
		return 8
	case ip4[0] < 192:
		return 16
	case ip4[0] < 224:
		return 24
	default:
		return 32
	}
}

func anonymizeIP(ip net.IP, anon Anonymizer) net.IP {
	if ip == nil || anon == nil {
		return ip
	}
	return uint32ToIP4(anon.Anonymize(ip4ToUint32(ip)))
}

func ip4ToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
}

func uint32ToIP4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
