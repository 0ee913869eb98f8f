// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

// Fuzz is a go-fuzz entry point exercising Verify and Decode against
// arbitrary input.
func Fuzz(data []byte) int {
	hdr, err := Verify(data)
	if err != nil {
		return 0
	}
	if _, err := Decode(hdr, data, nil); err != nil {
		return 0
	}
	return 1
}
