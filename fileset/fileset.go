// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package fileset tracks a directory of FT3 capture files ordered by
// capture start time and expires the oldest ones once a quota is exceeded.
package fileset

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flow-tools/ft3/stream"
)

// maxWalkDepth bounds how many directory levels Load descends, matching
// the original loader's fixed recursion limit.
const maxWalkDepth = 50

// Entry describes one file admitted into a Set.
type Entry struct {
	Path      string
	CapStart  time.Time
	NumBytes  int64
	Temporary bool
}

// Set is an ordered, doubly-linked sequence of Entry, oldest cap_start
// first, the same shape the original loader keeps in memory.
type Set struct {
	dir   string
	order *list.List // of *Entry
}

// Load walks dir up to maxWalkDepth levels, admitting any file whose name
// starts with "ft", "cf", or (if admitTmp) "tmp" and whose contents carry
// the FT3 magic bytes, then returns them ordered by capture start time.
func Load(dir string, admitTmp bool) (*Set, error) {
	s := &Set{dir: dir, order: list.New()}

	err := walk(dir, 0, func(path string, info os.FileInfo) error {
		name := filepath.Base(path)
		if !hasAdmittedPrefix(name, admitTmp) {
			return nil
		}
		capStart, ok := peekCapStart(path)
		if !ok {
			return nil
		}
		s.insertSorted(&Entry{
			Path:      path,
			CapStart:  capStart,
			NumBytes:  info.Size(),
			Temporary: strings.HasPrefix(name, "tmp-"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func hasAdmittedPrefix(name string, admitTmp bool) bool {
	switch {
	case strings.HasPrefix(name, "ft"):
		return true
	case strings.HasPrefix(name, "cf"):
		return true
	case admitTmp && strings.HasPrefix(name, "tmp"):
		return true
	default:
		return false
	}
}

func walk(dir string, depth int, visit func(string, os.FileInfo) error) error {
	if depth > maxWalkDepth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		if de.IsDir() {
			if err := walk(path, depth+1, visit); err != nil {
				return err
			}
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if err := visit(path, info); err != nil {
			return err
		}
	}
	return nil
}

// peekCapStart opens path just far enough to validate its magic bytes and
// read the capture-start TLV from its header.
func peekCapStart(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	r, err := stream.Open(f, nil)
	if err != nil {
		return time.Time{}, false
	}
	defer r.Close()
	return r.Header.CaptureStart, true
}

// insertSorted inserts e into s.order keeping ascending CapStart order,
// the insertion-sort-at-load-time behavior of the original loader.
func (s *Set) insertSorted(e *Entry) {
	for el := s.order.Back(); el != nil; el = el.Prev() {
		if el.Value.(*Entry).CapStart.Before(e.CapStart) || el.Value.(*Entry).CapStart.Equal(e.CapStart) {
			s.order.InsertAfter(e, el)
			return
		}
	}
	s.order.PushFront(e)
}

// Entries returns the current ordered entry list, oldest first.
func (s *Set) Entries() []*Entry {
	out := make([]*Entry, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Entry))
	}
	return out
}

// Expire removes the oldest entries from s until both maxFiles and
// maxBytes quotas are satisfied (a zero quota is unlimited), accounting
// for curBytes, an in-progress stream not yet present in s. It returns the
// entries it removed; their files stay on disk (Remove deletes one).
func (s *Set) Expire(maxFiles int, maxBytes int64, curBytes int64) []*Entry {
	var removed []*Entry

	totalBytes := func() int64 {
		total := curBytes
		for el := s.order.Front(); el != nil; el = el.Next() {
			total += el.Value.(*Entry).NumBytes
		}
		return total
	}

	for {
		overFiles := maxFiles > 0 && s.order.Len() > maxFiles
		overBytes := maxBytes > 0 && totalBytes() > maxBytes
		if !overFiles && !overBytes {
			break
		}
		front := s.order.Front()
		if front == nil {
			break
		}
		entry := front.Value.(*Entry)
		s.order.Remove(front)
		removed = append(removed, entry)
	}
	return removed
}

// Remove deletes e's underlying file from disk.
func Remove(e *Entry) error {
	if err := os.Remove(e.Path); err != nil {
		return fmt.Errorf("fileset: remove %s: %w", e.Path, err)
	}
	return nil
}
