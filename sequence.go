// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

// SeqResult reports the outcome of a SequenceTracker.Check call.
type SeqResult struct {
	// Lost is the number of flows this PDU's sequence gap implies were
	// dropped between the exporter and the collector, computed with
	// 32-bit wraparound. Zero when flowSeq matched the expected value.
	Lost uint32
	// Misordered is true when flowSeq arrived lower than the tracker's
	// expected next value.
	Misordered bool
	// Reset is true the first time a given (EngineType, EngineID) pair is
	// seen.
	Reset bool
}

type seqKey struct {
	engineType uint8
	engineID   uint8
}

// SequenceTracker computes flow loss and misordering per (EngineType,
// EngineID) pair from each PDU's flow_sequence field and record count,
// handling 32-bit wraparound. It is not safe for concurrent use; callers
// sharing one tracker across goroutines must serialize calls themselves.
type SequenceTracker struct {
	expected map[seqKey]uint32
}

// NewSequenceTracker returns an empty tracker.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{expected: make(map[seqKey]uint32)}
}

// Check records one PDU's (flowSeq, count) for the given engine and reports
// loss/misorder relative to the previous call for that engine.
func (t *SequenceTracker) Check(engineType, engineID uint8, flowSeq uint32, count int) SeqResult {
	key := seqKey{engineType, engineID}
	exp, seen := t.expected[key]
	next := flowSeq + uint32(count)

	if !seen {
		t.expected[key] = next
		return SeqResult{Reset: true}
	}

	t.expected[key] = next
	if flowSeq == exp {
		return SeqResult{}
	}

	// 32-bit wraparound loss count: rcv-exp when rcv is ahead, otherwise
	// the distance from exp to the wrap point plus rcv.
	var lost uint32
	if flowSeq > exp {
		lost = flowSeq - exp
	} else {
		lost = (0xFFFFFFFF - exp) + flowSeq
	}
	return SeqResult{Lost: lost, Misordered: flowSeq < exp}
}

// Reset discards tracked state for one engine, forcing the next Check call
// for it to report Reset instead of Lost/Misordered.
func (t *SequenceTracker) Reset(engineType, engineID uint8) {
	delete(t.expected, seqKey{engineType, engineID})
}
