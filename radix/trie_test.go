// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package radix

import "testing"

func ip(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

func TestAddLookup(t *testing.T) {
	tr := New()
	if err := tr.Add(ip(10, 0, 0, 0), 8, "ten"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, err := tr.Lookup(ip(10, 0, 0, 0), 8)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != "ten" {
		t.Fatalf("got %v, want ten", v)
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	tr := New()
	if err := tr.Add(ip(10, 0, 0, 0), 8, "ten"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tr.Add(ip(10, 0, 0, 0), 8, "ten-again"); err != ErrDuplicatePrefix {
		t.Fatalf("got %v, want ErrDuplicatePrefix", err)
	}
}

func TestLookupRequiresExactMask(t *testing.T) {
	tr := New()
	tr.Add(ip(10, 0, 0, 0), 8, "ten-slash-8")
	if _, err := tr.Lookup(ip(10, 0, 0, 0), 16); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSearchBestLongestPrefix(t *testing.T) {
	tr := New()
	tr.Add(ip(10, 0, 0, 0), 8, "broad")
	tr.Add(ip(10, 1, 0, 0), 16, "narrow")

	v, err := tr.SearchBest(ip(10, 1, 2, 3))
	if err != nil {
		t.Fatalf("SearchBest: %v", err)
	}
	if v != "narrow" {
		t.Fatalf("got %v, want narrow", v)
	}

	v, err = tr.SearchBest(ip(10, 2, 2, 3))
	if err != nil {
		t.Fatalf("SearchBest: %v", err)
	}
	if v != "broad" {
		t.Fatalf("got %v, want broad", v)
	}
}

func TestSearchBestNoMatch(t *testing.T) {
	tr := New()
	tr.Add(ip(10, 0, 0, 0), 8, "ten")
	if _, err := tr.SearchBest(ip(192, 168, 0, 1)); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesValue(t *testing.T) {
	tr := New()
	tr.Add(ip(10, 0, 0, 0), 8, "ten")
	if err := tr.Delete(ip(10, 0, 0, 0), 8); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := tr.Lookup(ip(10, 0, 0, 0), 8); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	tr := New()
	if err := tr.Delete(ip(10, 0, 0, 0), 8); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestWalkVisitsAllPopulatedPrefixes(t *testing.T) {
	tr := New()
	tr.Add(ip(10, 0, 0, 0), 8, "a")
	tr.Add(ip(172, 16, 0, 0), 12, "b")
	tr.Add(ip(192, 168, 0, 0), 16, "c")

	seen := map[string]bool{}
	tr.Walk(func(e Entry) {
		seen[e.Value.(string)] = true
	})
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("Walk did not visit %q", want)
		}
	}
}
