// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package fileset

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/flow-tools/ft3"
)

// FormatPath builds the directory/filename for a capture starting at
// capStart, nested per nest (-3..3: 0 = flat, 1 = YYYY, 2 = YYYY/YYYY-MM,
// 3 = YYYY/YYYY-MM/YYYY-MM-DD; a negative value gives the same layout as
// its absolute value).
func FormatPath(root string, nest int, version netflow.Version, agg netflow.AggMethod, capStart time.Time, active bool) string {
	dir := root
	switch abs(nest) {
	case 1:
		dir = filepath.Join(root, capStart.Format("2006"))
	case 2:
		dir = filepath.Join(root, capStart.Format("2006"), capStart.Format("2006-01"))
	case 3:
		dir = filepath.Join(root, capStart.Format("2006"), capStart.Format("2006-01"), capStart.Format("2006-01-02"))
	}
	return filepath.Join(dir, fileName(version, agg, capStart, active))
}

func fileName(version netflow.Version, agg netflow.AggMethod, capStart time.Time, active bool) string {
	verPart := fmt.Sprintf("v%d", version)
	if version == netflow.V8 {
		verPart = fmt.Sprintf("v8m%d", agg)
	}
	prefix := "ft"
	if active {
		prefix = "tmp-ft"
	}
	_, offset := capStart.Zone()
	return fmt.Sprintf("%s-%s.%s.%s%s",
		prefix, verPart,
		capStart.Format("2006-01-02"),
		capStart.Format("150405"),
		formatUTCOffset(offset))
}

func formatUTCOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
