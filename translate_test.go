// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import (
	"net"
	"testing"
)

func TestTranslateV5ToV1DropsV5OnlyFields(t *testing.T) {
	src := Record{
		Version: V5, SrcAddr: net.IPv4(1, 2, 3, 4), SrcAS: 100, DstAS: 200,
	}
	dst, err := Translate(src, V1)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if dst.Version != V1 {
		t.Errorf("Version = %v, want V1", dst.Version)
	}
	if !dst.SrcAddr.Equal(src.SrcAddr) {
		t.Errorf("SrcAddr not preserved: %v", dst.SrcAddr)
	}
	if dst.SrcAS != 0 {
		t.Errorf("SrcAS = %d, want 0 (v1 has no AS fields)", dst.SrcAS)
	}
}

func TestTranslateV5ToV1005AddsTagFields(t *testing.T) {
	src := Record{Version: V5, SrcAS: 1}
	dst, err := Translate(src, V1005)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if dst.SrcAS != 1 {
		t.Errorf("SrcAS not preserved across v5->v1005")
	}
	if dst.SrcTag != 0 || dst.DstTag != 0 {
		t.Errorf("tags should default to zero, not copied from source")
	}
}

func TestTranslateRejectsV8(t *testing.T) {
	if _, err := Translate(Record{Version: V8}, V5); err != ErrNoTranslation {
		t.Fatalf("got %v, want ErrNoTranslation", err)
	}
	if _, err := Translate(Record{Version: V5}, V8); err != ErrNoTranslation {
		t.Fatalf("got %v, want ErrNoTranslation", err)
	}
}
