// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import "testing"

func TestSequenceTrackerFirstSeenIsReset(t *testing.T) {
	tr := NewSequenceTracker()
	r := tr.Check(1, 1, 1000, 10)
	if !r.Reset {
		t.Fatalf("first Check should report Reset, got %+v", r)
	}
}

func TestSequenceTrackerDetectsLoss(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Check(1, 1, 1000, 10) // expected next: 1010
	r := tr.Check(1, 1, 1020, 10)
	if r.Lost != 10 {
		t.Fatalf("Lost = %d, want 10", r.Lost)
	}
}

func TestSequenceTrackerDetectsMisorder(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Check(1, 1, 1000, 10) // expected next: 1010
	r := tr.Check(1, 1, 1005, 2)
	if !r.Misordered {
		t.Fatalf("expected Misordered, got %+v", r)
	}
	// Loss is computed unconditionally via the wraparound formula, even
	// on the misordered (rcv < exp) branch: (0xFFFFFFFF-1010)+1005.
	const wantLost = 0xFFFFFFFF - 1010 + 1005
	if r.Lost != wantLost {
		t.Fatalf("Lost = %d, want %d", r.Lost, uint32(wantLost))
	}
}

func TestSequenceTrackerWraparound(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Check(1, 1, 0xFFFFFFFA, 10) // expected next wraps to 4
	r := tr.Check(1, 1, 4, 6)
	if r.Lost != 0 || r.Misordered || r.Reset {
		t.Fatalf("expected clean wraparound, got %+v", r)
	}
}

func TestSequenceTrackerIndependentPerEngine(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Check(1, 1, 1000, 10)
	r := tr.Check(2, 1, 500, 5)
	if !r.Reset {
		t.Fatalf("different engine should report Reset on first sight, got %+v", r)
	}
}

func TestSequenceTrackerResetClearsState(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Check(1, 1, 1000, 10)
	tr.Reset(1, 1)
	r := tr.Check(1, 1, 50, 1)
	if !r.Reset {
		t.Fatalf("Check after Reset should report Reset, got %+v", r)
	}
}
