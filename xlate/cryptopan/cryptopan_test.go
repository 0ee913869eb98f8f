// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package cryptopan

import "testing"

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewRejectsBadKeySize(t *testing.T) {
	if _, err := New(make([]byte, 10)); err != ErrKeySize {
		t.Fatalf("got %v, want ErrKeySize", err)
	}
}

func TestAnonymizeIsDeterministic(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := c.Anonymize(0x0A000001)
	b := c.Anonymize(0x0A000001)
	if a != b {
		t.Fatalf("anonymization not deterministic: %#x != %#x", a, b)
	}
}

func TestAnonymizeIsPrefixPreserving(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Two addresses sharing a /24 must still share a prefix (of some
	// length) after anonymization; in particular their anonymized forms
	// must agree on at least as many leading bits as any two unrelated
	// addresses.
	const net1 = 0x0A010100 // 10.1.1.0
	const net2 = 0x0A010101 // 10.1.1.1
	const unrelated = 0xC0A80101

	a1 := c.Anonymize(net1)
	a2 := c.Anonymize(net2)
	u := c.Anonymize(unrelated)

	sharedNet := commonPrefixLen(a1, a2)
	sharedUnrelated := commonPrefixLen(a1, u)
	if sharedNet < sharedUnrelated {
		t.Fatalf("addresses from the same /24 share fewer anonymized prefix bits (%d) than an unrelated address (%d)", sharedNet, sharedUnrelated)
	}
}

func TestAnonymizeChangesTheAddress(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	addr := uint32(0x0A000001)
	if c.Anonymize(addr) == addr {
		t.Fatalf("anonymized address equals the original")
	}
}

func commonPrefixLen(a, b uint32) int {
	x := a ^ b
	n := 0
	for i := 31; i >= 0; i-- {
		if (x>>uint(i))&1 != 0 {
			break
		}
		n++
	}
	return n
}
