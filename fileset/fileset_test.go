// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package fileset

import (
	"container/list"
	"testing"
	"time"
)

func newSetFromTimes(times ...int64) *Set {
	s := &Set{order: list.New()}
	for i, t := range times {
		s.insertSorted(&Entry{
			Path:     "file" + string(rune('a'+i)),
			CapStart: time.Unix(t, 0),
			NumBytes: 100,
		})
	}
	return s
}

func TestInsertSortedOrdersByCapStart(t *testing.T) {
	s := newSetFromTimes(3, 1, 5, 2, 4)
	entries := s.Entries()
	want := []int64{1, 2, 3, 4, 5}
	for i, e := range entries {
		if e.CapStart.Unix() != want[i] {
			t.Fatalf("entries[%d].CapStart = %d, want %d", i, e.CapStart.Unix(), want[i])
		}
	}
}

func TestExpireByMaxFiles(t *testing.T) {
	s := newSetFromTimes(1, 2, 3, 4, 5)
	removed := s.Expire(3, 0, 0)
	if len(removed) != 2 {
		t.Fatalf("removed %d entries, want 2", len(removed))
	}
	remaining := s.Entries()
	if len(remaining) != 3 {
		t.Fatalf("remaining %d entries, want 3", len(remaining))
	}
	want := []int64{3, 4, 5}
	for i, e := range remaining {
		if e.CapStart.Unix() != want[i] {
			t.Errorf("remaining[%d].CapStart = %d, want %d", i, e.CapStart.Unix(), want[i])
		}
	}
	var totalBytes int64
	for _, e := range remaining {
		totalBytes += e.NumBytes
	}
	if totalBytes != 300 {
		t.Errorf("remaining bytes = %d, want 300", totalBytes)
	}
}

func TestExpireByMaxBytesAccountsForCurBytes(t *testing.T) {
	s := newSetFromTimes(1, 2, 3)
	// 3 files * 100 bytes + 250 in-progress = 550; max 400 should expire
	// until on-disk + curBytes fits.
	removed := s.Expire(0, 400, 250)
	if len(removed) == 0 {
		t.Fatal("expected at least one file removed")
	}
}

func TestExpireNoQuotasIsNoop(t *testing.T) {
	s := newSetFromTimes(1, 2, 3)
	removed := s.Expire(0, 0, 0)
	if len(removed) != 0 {
		t.Fatalf("removed %d entries, want 0", len(removed))
	}
}

func TestFormatPathNesting(t *testing.T) {
	capStart := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	got := FormatPath("/data", 3, 5, 0, capStart, false)
	want := "/data/2026/2026-03/2026-03-05/ft-v5.2026-03-05.143000+0000"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatPathActiveUsesTmpPrefix(t *testing.T) {
	capStart := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	got := FormatPath("/data", 0, 5, 0, capStart, true)
	if got != "/data/tmp-ft-v5.2026-03-05.143000+0000" {
		t.Fatalf("got %q", got)
	}
}
