// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package tag

import (
	"net"
	"testing"

	"github.com/flow-tools/ft3"
)

func TestApplySrcASSet(t *testing.T) {
	e := NewEngine()
	def := &Definition{Terms: []*Term{{
		Actions: []Action{{
			Class: ClassSrcAS,
			Key:   uint16(65001),
			Assignments: []Assignment{
				{Dir: DirSrc, Op: OpSet, Value: 42},
			},
		}},
	}}}
	if err := e.AddDefinition(def); err != nil {
		t.Fatalf("AddDefinition: %v", err)
	}

	rec := netflow.Record{SrcAS: 65001}
	src, dst := e.Apply(rec)
	if src != 42 || dst != 0 {
		t.Fatalf("got src=%d dst=%d, want src=42 dst=0", src, dst)
	}

	rec2 := netflow.Record{SrcAS: 1}
	src2, _ := e.Apply(rec2)
	if src2 != 0 {
		t.Fatalf("non-matching AS should not tag, got %d", src2)
	}
}

func TestSrcASAndDstASDoNotCrossFire(t *testing.T) {
	e := NewEngine()
	def := &Definition{Terms: []*Term{{
		Actions: []Action{
			{
				Class: ClassSrcAS,
				Key:   uint16(100),
				Assignments: []Assignment{
					{Dir: DirSrc, Op: OpSet, Value: 1},
				},
			},
			{
				Class: ClassDstAS,
				Key:   uint16(100),
				Assignments: []Assignment{
					{Dir: DirDst, Op: OpSet, Value: 2},
				},
			},
		},
	}}}
	if err := e.AddDefinition(def); err != nil {
		t.Fatalf("AddDefinition: %v", err)
	}

	// SrcAS matches the ClassSrcAS action only; DstAS (200) matches
	// neither, so the ClassDstAS action must not fire off of SrcAS.
	src, dst := e.Apply(netflow.Record{SrcAS: 100, DstAS: 200})
	if src != 1 || dst != 0 {
		t.Fatalf("got src=%d dst=%d, want src=1 dst=0 (no cross-fire from ClassDstAS)", src, dst)
	}

	// DstAS matches the ClassDstAS action only.
	src, dst = e.Apply(netflow.Record{SrcAS: 300, DstAS: 100})
	if src != 0 || dst != 2 {
		t.Fatalf("got src=%d dst=%d, want src=0 dst=2 (no cross-fire from ClassSrcAS)", src, dst)
	}
}

func TestApplyOrComposes(t *testing.T) {
	e := NewEngine()
	def := &Definition{Terms: []*Term{{
		Actions: []Action{
			{Class: ClassTOS, Key: uint8(0), Assignments: []Assignment{{Dir: DirDst, Op: OpOr, Value: 0x1}}},
			{Class: ClassAny, Assignments: []Assignment{{Dir: DirDst, Op: OpOr, Value: 0x2}}},
		},
	}}}
	if err := e.AddDefinition(def); err != nil {
		t.Fatalf("AddDefinition: %v", err)
	}
	_, dst := e.Apply(netflow.Record{TOS: 0})
	if dst != 0x3 {
		t.Fatalf("got dst=%#x, want 0x3", dst)
	}
}

func TestApplyPrefixMatch(t *testing.T) {
	e := NewEngine()
	_, prefix, _ := net.ParseCIDR("10.0.0.0/8")
	def := &Definition{Terms: []*Term{{
		Actions: []Action{{
			Class: ClassSrcPrefix, Key: prefix,
			Assignments: []Assignment{{Dir: DirSrc, Op: OpSet, Value: 7}},
		}},
	}}}
	if err := e.AddDefinition(def); err != nil {
		t.Fatalf("AddDefinition: %v", err)
	}
	rec := netflow.Record{SrcAddr: net.IPv4(10, 1, 2, 3)}
	src, _ := e.Apply(rec)
	if src != 7 {
		t.Fatalf("got src=%d, want 7", src)
	}
}

func TestTermFilterGatesAction(t *testing.T) {
	e := NewEngine()
	filter := NewBitmap()
	filter.Set(5)
	def := &Definition{Terms: []*Term{{
		InputFilter: filter,
		Actions: []Action{{
			Class: ClassAny, Assignments: []Assignment{{Dir: DirSrc, Op: OpSet, Value: 9}},
		}},
	}}}
	if err := e.AddDefinition(def); err != nil {
		t.Fatalf("AddDefinition: %v", err)
	}
	if src, _ := e.Apply(netflow.Record{Input: 5}); src != 9 {
		t.Fatalf("admitted interface should tag, got src=%d", src)
	}
	if src, _ := e.Apply(netflow.Record{Input: 6}); src != 0 {
		t.Fatalf("non-admitted interface should not tag, got src=%d", src)
	}
}
