// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package xlate

import (
	"net"
	"testing"

	"github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/xlate/cryptopan"
)

func TestSrcAddrToNetworkMasks(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{{
		Actions: []Action{{Kind: KindSrcAddrToNetwork, MaskLen: 24}},
	}}})
	rec := &netflow.Record{SrcAddr: net.IPv4(10, 1, 2, 200)}
	e.Apply(rec)
	if !rec.SrcAddr.Equal(net.IPv4(10, 1, 2, 0)) {
		t.Fatalf("got %v, want 10.1.2.0", rec.SrcAddr)
	}
}

func TestToClassNetworkUsesLegacyClasses(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{{
		Actions: []Action{{Kind: KindDstAddrToClassNetwork}},
	}}})
	rec := &netflow.Record{DstAddr: net.IPv4(192, 168, 5, 9)}
	e.Apply(rec)
	if !rec.DstAddr.Equal(net.IPv4(192, 168, 5, 0)) {
		t.Fatalf("class C address got %v, want 192.168.5.0", rec.DstAddr)
	}
}

func TestScaleMultipliesCounters(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{{
		Actions: []Action{{Kind: KindScale, ScaleFactor: 100}},
	}}})
	rec := &netflow.Record{Packets: 3, Octets: 7}
	e.Apply(rec)
	if rec.Packets != 300 || rec.Octets != 700 {
		t.Fatalf("got packets=%d octets=%d, want 300/700", rec.Packets, rec.Octets)
	}
}

func TestReplaceAS0OnlyAffectsZero(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{{
		Actions: []Action{
			{Kind: KindReplaceSrcAS0, ReplacementAS: 65000},
			{Kind: KindReplaceDstAS0, ReplacementAS: 65000},
		},
	}}})
	rec := &netflow.Record{SrcAS: 0, DstAS: 100}
	e.Apply(rec)
	if rec.SrcAS != 65000 || rec.DstAS != 100 {
		t.Fatalf("got src=%d dst=%d, want src=65000 dst=100", rec.SrcAS, rec.DstAS)
	}
}

func TestStopFlagSkipsLaterTermsInSameDefinition(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{
		{
			Actions: []Action{{Kind: KindScale, ScaleFactor: 2}},
			Stop:    true,
		},
		{
			Actions: []Action{{Kind: KindScale, ScaleFactor: 5}},
		},
	}})
	rec := &netflow.Record{Packets: 1}
	e.Apply(rec)
	if rec.Packets != 2 {
		t.Fatalf("got packets=%d, want 2 (second term should have been skipped)", rec.Packets)
	}
}

func TestStopFlagDoesNotSkipLaterDefinitions(t *testing.T) {
	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{
		{Actions: []Action{{Kind: KindScale, ScaleFactor: 2}}, Stop: true},
	}})
	e.AddDefinition(&Definition{Terms: []*Term{
		{Actions: []Action{{Kind: KindScale, ScaleFactor: 5}}},
	}})
	rec := &netflow.Record{Packets: 1}
	e.Apply(rec)
	if rec.Packets != 10 {
		t.Fatalf("got packets=%d, want 10 (stop only scopes to its own definition)", rec.Packets)
	}
}

func TestAddrAnonymizeUsesCryptoPAn(t *testing.T) {
	key := make([]byte, cryptopan.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	c, err := cryptopan.New(key)
	if err != nil {
		t.Fatalf("cryptopan.New: %v", err)
	}

	e := NewEngine()
	e.AddDefinition(&Definition{Terms: []*Term{{
		Actions: []Action{{Kind: KindAddrAnonymize, Anonymizer: c}},
	}}})
	rec := &netflow.Record{SrcAddr: net.IPv4(10, 0, 0, 1), DstAddr: net.IPv4(10, 0, 0, 2)}
	orig := net.IPv4(10, 0, 0, 1)
	e.Apply(rec)
	if rec.SrcAddr.Equal(orig) {
		t.Fatalf("SrcAddr was not anonymized")
	}
}

func TestInputFilterGatesActions(t *testing.T) {
	e := NewEngine()
	filter := NewBitmap()
	filter.Set(3)
	e.AddDefinition(&Definition{Terms: []*Term{{
		InputFilter: filter,
		Actions:     []Action{{Kind: KindScale, ScaleFactor: 9}},
	}}})

	admitted := &netflow.Record{Input: 3, Packets: 1}
	e.Apply(admitted)
	if admitted.Packets != 9 {
		t.Fatalf("got packets=%d, want 9", admitted.Packets)
	}

	rejected := &netflow.Record{Input: 4, Packets: 1}
	e.Apply(rejected)
	if rejected.Packets != 1 {
		t.Fatalf("non-admitted interface should not scale, got packets=%d", rejected.Packets)
	}
}
