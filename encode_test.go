// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import "testing"

func TestPDUWriterFlushesOnTimingChange(t *testing.T) {
	var flushed [][]byte
	w := NewPDUWriter(func(buf []byte) error {
		flushed = append(flushed, buf)
		return nil
	})

	base := Record{Version: V5, EngineType: 1, EngineID: 1, UnixSecs: 1000, SysUptime: 1}
	if err := w.Write(base); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Same version/engine, but a different UnixSecs: must flush the
	// pending PDU rather than batch a mismatched timestamp into it.
	later := base
	later.UnixSecs = 2000
	if err := w.Write(later); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(flushed) != 2 {
		t.Fatalf("got %d flushed PDUs, want 2 (one per distinct timestamp)", len(flushed))
	}
	for _, buf := range flushed {
		hdr, err := Verify(buf)
		if err != nil {
			t.Fatalf("Verify flushed PDU: %v", err)
		}
		if hdr.Count != 1 {
			t.Errorf("Count = %d, want 1", hdr.Count)
		}
	}
}

func TestPDUWriterSequencesPerEngine(t *testing.T) {
	var flushed [][]byte
	w := NewPDUWriter(func(buf []byte) error {
		flushed = append(flushed, buf)
		return nil
	})

	recEngine1 := Record{Version: V5, EngineType: 1, EngineID: 1, UnixSecs: 1}
	recEngine2 := Record{Version: V5, EngineType: 2, EngineID: 1, UnixSecs: 1}

	// Interleave two engines; each group flushes on every Write since the
	// engine fields differ, so every Write after the first also triggers
	// a flush of the other engine's single pending record.
	if err := w.Write(recEngine1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(recEngine2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(recEngine1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var seqEngine1 []uint32
	var seqEngine2 []uint32
	for _, buf := range flushed {
		hdr, err := Verify(buf)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		switch hdr.EngineType {
		case 1:
			seqEngine1 = append(seqEngine1, hdr.FlowSequence)
		case 2:
			seqEngine2 = append(seqEngine2, hdr.FlowSequence)
		}
	}
	if len(seqEngine1) != 2 || seqEngine1[0] != 1 || seqEngine1[1] != 2 {
		t.Errorf("engine 1 sequences = %v, want [1 2]", seqEngine1)
	}
	if len(seqEngine2) != 1 || seqEngine2[0] != 1 {
		t.Errorf("engine 2 sequences = %v, want [1]", seqEngine2)
	}
}
