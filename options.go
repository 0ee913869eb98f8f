// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package netflow

import (
	"net"
	"os"

	"github.com/flow-tools/ft3/log"
)

// Options controls how Decode interprets and fills out records.
type Options struct {
	// ByteOrder overrides the byte order records are swapped into. The zero
	// value is BigEndian, which leaves records in wire order (the package
	// default).
	ByteOrder ByteOrder

	// ASSub enables substitution of ASSubValue into src_as/dst_as fields
	// that the exporter left at 0 (an AS it could not resolve), matching
	// `ftxlate`'s as0 handling. Off by default.
	ASSub bool

	// ASSubValue is the AS number written into src_as/dst_as when ASSub
	// is enabled and the decoded field is 0.
	ASSubValue uint16

	// ExporterIP, when non-nil, is written into the ExporterAddr of every
	// decoded Record, whatever its version; no PDU variant carries the
	// exporter address on the wire.
	ExporterIP net.IP

	// Logger receives structured diagnostics. A nil Logger disables
	// logging entirely.
	Logger log.Logger
}

func (o *Options) logger() *log.Helper {
	if o == nil {
		return log.NewHelper(nil)
	}
	return log.NewHelper(o.Logger)
}

func defaultOptions() *Options {
	return &Options{}
}

// DefaultLogger returns a Logger writing filtered (info and above) records
// to stderr, useful for cmd/ front ends that don't build their own.
func DefaultLogger() log.Logger {
	return log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelInfo))
}
