// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import "errors"

// Sentinel errors returned by Verify, Decode and the stream reader.
var (
	// ErrShortPDU is returned when a buffer is too small to hold even a
	// version-specific PDU header.
	ErrShortPDU = errors.New("netflow: buffer shorter than PDU header")

	// ErrUnknownVersion is returned when the version field does not match
	// any supported export format.
	ErrUnknownVersion = errors.New("netflow: unknown export version")

	// ErrUnknownAggMethod is returned when a v8 PDU carries an aggregation
	// method this package does not recognize.
	ErrUnknownAggMethod = errors.New("netflow: unknown v8 aggregation method")

	// ErrTruncatedPDU is returned when count * record size exceeds the
	// remaining buffer length.
	ErrTruncatedPDU = errors.New("netflow: PDU truncated before last record")

	// ErrCountExceeded is returned when a PDU's count field exceeds the
	// maximum flows permitted for its version/aggregation method.
	ErrCountExceeded = errors.New("netflow: record count exceeds version maximum")

	// ErrPDUSizeMismatch is returned when a non-padded variant's buffer
	// length does not exactly equal header+count*record.
	ErrPDUSizeMismatch = errors.New("netflow: PDU size does not match expected fixed layout")

	// ErrUnknownAggVersion is returned when a v8 PDU's agg_version byte is
	// neither 2 nor the Juniper 0-for-2 quirk value.
	ErrUnknownAggVersion = errors.New("netflow: unknown v8 aggregation version")

	// ErrTruncatedStream is returned by a stream reader when EOF arrives
	// mid-record, whether or not the stream's header carries the done flag.
	ErrTruncatedStream = errors.New("netflow: stream ended mid-record")

	// ErrCorruptStream is returned when a stream's magic bytes or TLV
	// header are malformed or lack a required field. The stream package
	// also returns it for a write after close and for mapping a compressed
	// stream.
	ErrCorruptStream = errors.New("netflow: stream header corrupt")

	// ErrUnsupportedStreamVersion is returned when a stream's internal
	// format version is anything other than FT3 (legacy FT1 included).
	ErrUnsupportedStreamVersion = errors.New("netflow: unsupported stream format version")

	// ErrNoTranslation is returned by Translate when no converter exists
	// between the requested versions.
	ErrNoTranslation = errors.New("netflow: no translation path between versions")
)
