// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package stream

import (
	"compress/zlib"
	"context"
	"encoding/binary"
	"io"

	"github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/log"
)

// Writer serializes records to an FT3 stream: the preamble and TLV header
// are written once, up front, then records are appended (optionally
// through a zlib compressor) until Close or Interrupt finalizes the file.
type Writer struct {
	Header *Header

	dst         io.Writer
	seekable    io.WriteSeeker
	flagsOffset int64
	zw          *zlib.Writer
	logger      *log.Helper
	closed      bool
}

// NewWriter writes the FT3 preamble and TLV header for hdr to w and returns
// a Writer ready to accept records. hdr.Version (and, for v8,
// hdr.AggMethod) must already be set. hdr.CaptureStart is always written;
// an unset value is stored as the zero time, and the reader accepts it.
//
// If w also implements io.WriteSeeker, Close and Interrupt rewrite the
// header_flags TLV in place (matching the original writer's "rewrite the
// header TLV in place" finalization) instead of leaving it at whatever
// value was current when the header was first written.
func NewWriter(w io.Writer, hdr *Header, logger log.Logger) (*Writer, error) {
	if hdr.Flags&FlagStreaming != 0 {
		hdr.Flags |= FlagPreloaded
	}

	preamble := []byte{Magic1, Magic2, OrderBigEndian, FT3}
	if _, err := w.Write(preamble); err != nil {
		return nil, err
	}
	headerBytes, flagsOffset := encodeHeaderWithFlagsOffset(hdr)
	if _, err := w.Write(headerBytes); err != nil {
		return nil, err
	}

	writer := &Writer{
		Header:      hdr,
		dst:         w,
		flagsOffset: int64(len(preamble) + flagsOffset),
		logger:      log.NewHelper(logger),
	}
	if seekable, ok := w.(io.WriteSeeker); ok {
		writer.seekable = seekable
	}
	if hdr.Flags&FlagCompress != 0 {
		writer.zw = zlib.NewWriter(w)
		writer.dst = writer.zw
	}
	return writer, nil
}

// rewriteFlags seeks back to the header_flags TLV and overwrites its value
// with the Header's current flags, then restores the write position to
// end-of-file. A no-op when the underlying writer isn't seekable.
func (w *Writer) rewriteFlags() error {
	if w.seekable == nil {
		return nil
	}
	end, err := w.seekable.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.seekable.Seek(w.flagsOffset, io.SeekStart); err != nil {
		return err
	}
	var flagBuf [4]byte
	binary.BigEndian.PutUint32(flagBuf[:], uint32(w.Header.Flags))
	if _, err := w.seekable.Write(flagBuf[:]); err != nil {
		return err
	}
	_, err = w.seekable.Seek(end, io.SeekStart)
	return err
}

// Write appends one raw, already-encoded record to the stream.
func (w *Writer) Write(record []byte) error {
	if w.closed {
		return netflow.ErrCorruptStream
	}
	_, err := w.dst.Write(record)
	if err == nil {
		w.Header.FlowCount++
	}
	return err
}

// Run writes records from records until the channel closes or ctx is
// canceled, in which case it calls Interrupt before returning. This
// replaces the original library's "install a signal handler, write an
// INTERRUPT TLV from inside it" pattern with an ordinary cancellation
// token checked at the same safe point (between records).
func (w *Writer) Run(ctx context.Context, records <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("writer interrupted", "flows_written", w.Header.FlowCount)
			return w.Interrupt()
		case rec, ok := <-records:
			if !ok {
				return w.Close()
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
}

// Interrupt finalizes a partial stream in place: it flushes the
// compression tail (if any) without emitting the DONE flag, so a reader
// sees a truncated-but-consistent file rather than a corrupt one.
func (w *Writer) Interrupt() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.rewriteFlags()
}

// Close flushes the deflate tail (if compressing) and marks the stream
// DONE. Callers that instead want a deliberately partial file should call
// Interrupt.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.Header.Flags |= FlagDone
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.rewriteFlags()
}
