// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Command ftcollect is a UDP NetFlow collector: it listens for exporter
// datagrams, decodes and sequence-checks them, and writes the resulting
// records to rotating FT3 stream files under a fileset directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	netflow "github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/fileset"
	"github.com/flow-tools/ft3/log"
	"github.com/flow-tools/ft3/stream"
)

func main() {
	listenAddr := flag.String("listen", ":2055", "UDP address to listen for NetFlow exports on")
	outDir := flag.String("out", "./flows", "directory to write rotating FT3 stream files to")
	bufSize := flag.Int("buffer", 65536, "UDP read buffer size in bytes")
	rotateEvery := flag.Duration("rotate", 15*time.Minute, "how often to rotate to a new stream file")
	compress := flag.Bool("compress", true, "zlib-compress stream files")
	flag.Parse()

	baseLogger := netflow.DefaultLogger()
	helper := log.NewHelper(baseLogger)

	if err := run(*listenAddr, *outDir, *bufSize, *rotateEvery, *compress, baseLogger, helper); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(listenAddr, outDir string, bufSize int, rotateEvery time.Duration, compress bool, baseLogger log.Logger, logger *log.Helper) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ftcollect: creating output dir: %w", err)
	}

	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("ftcollect: resolving listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("ftcollect: listening: %w", err)
	}
	defer conn.Close()
	logger.Infow("listening for NetFlow exports", "addr", addr.String())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seqTracker := netflow.NewSequenceTracker()
	writer, err := newRotatingWriter(outDir, compress, logger)
	if err != nil {
		return err
	}
	defer writer.close()

	rotateTicker := time.NewTicker(rotateEvery)
	defer rotateTicker.Stop()

	buf := make([]byte, bufSize)
	for {
		select {
		case <-ctx.Done():
			logger.Infow("shutting down")
			return nil
		case <-rotateTicker.C:
			if err := writer.rotate(); err != nil {
				logger.Errorw("rotation failed", "err", err)
			}
		default:
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			logger.Errorw("read failed", "err", err)
			continue
		}

		hdr, err := netflow.Verify(buf[:n])
		if err != nil {
			logger.Debugw("rejected malformed PDU", "source", remote.String(), "err", err)
			continue
		}

		opts := &netflow.Options{ByteOrder: netflow.BigEndian, Logger: baseLogger}
		records, err := netflow.Decode(hdr, buf[:n], opts)
		if err != nil {
			logger.Debugw("decode failed", "source", remote.String(), "err", err)
			continue
		}

		seqResult := seqTracker.Check(hdr.EngineType, hdr.EngineID, hdr.FlowSequence, len(records))
		if seqResult.Lost > 0 {
			writer.noteLost(seqResult.Lost)
		}
		if seqResult.Misordered {
			writer.noteMisordered()
		}
		if seqResult.Reset {
			writer.noteReset()
		}

		for _, rec := range records {
			if err := writer.write(rec); err != nil {
				logger.Errorw("write failed", "err", err)
			}
		}
	}
}

// rotatingWriter owns the fileset directory and the currently-open stream
// writer, swapping in a fresh file whenever rotate is called.
type rotatingWriter struct {
	dir      string
	compress bool
	logger   *log.Helper

	file    *os.File
	w       *stream.Writer
	version netflow.Version
}

func newRotatingWriter(dir string, compress bool, logger *log.Helper) (*rotatingWriter, error) {
	rw := &rotatingWriter{dir: dir, compress: compress, logger: logger, version: netflow.V5}
	if err := rw.rotate(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *rotatingWriter) rotate() error {
	if rw.w != nil {
		if err := rw.w.Close(); err != nil {
			rw.logger.Errorw("closing previous stream file", "err", err)
		}
		rw.file.Close()
	}

	now := time.Now().UTC()
	path := fileset.FormatPath(rw.dir, 1, rw.version, 0, now, true)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ftcollect: creating fileset dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ftcollect: creating stream file: %w", err)
	}

	hdr := &stream.Header{
		StreamVersion: stream.FT3,
		Version:       rw.version,
		AggMethod:     0,
		AggVersion:    netflow.AggVersion,
		CaptureStart:  now,
	}
	if rw.compress {
		hdr.Flags |= stream.FlagCompress
	}

	w, err := stream.NewWriter(f, hdr, nil)
	if err != nil {
		f.Close()
		return fmt.Errorf("ftcollect: opening stream writer: %w", err)
	}
	rw.file = f
	rw.w = w
	return nil
}

func (rw *rotatingWriter) write(rec netflow.Record) error {
	// The stream header declares a single (version, agg method) for the
	// whole file; stamp it from the first record written after a
	// rotation, since that's the first point a real value is known.
	if rw.w.Header.FlowCount == 0 {
		rw.w.Header.Version = rec.Version
		rw.w.Header.AggMethod = rec.AggMethod
	}
	buf, err := netflow.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return rw.w.Write(buf)
}

func (rw *rotatingWriter) noteLost(n uint32) { rw.w.Header.FlowLost += uint64(n) }
func (rw *rotatingWriter) noteMisordered()   { rw.w.Header.Misordered++ }
func (rw *rotatingWriter) noteReset()        { rw.w.Header.SeqReset++ }

func (rw *rotatingWriter) close() error {
	if rw.w == nil {
		return nil
	}
	err := rw.w.Close()
	rw.file.Close()
	return err
}
