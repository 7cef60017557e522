// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package objio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/2dChan/voxmesh/voxel"
)

// ReadXYZ reads one point per line as "x y z" or "x y z nx ny nz". Blank
// lines and lines starting with # are skipped.
func ReadXYZ(r io.Reader) ([]*voxel.Point, error) {
	var points []*voxel.Point

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		vals, err := parseFloats(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("objio: line %d: %w", line, err)
		}
		switch len(vals) {
		case 3:
			points = append(points, voxel.NewPoint(vals[0], vals[1], vals[2]))
		case 6:
			points = append(points, voxel.NewPoint(vals[0], vals[1], vals[2]).WithNormal(vals[3], vals[4], vals[5]))
		default:
			return nil, fmt.Errorf("objio: line %d: got %d values, want 3 or 6", line, len(vals))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objio: %w", err)
	}
	return points, nil
}

// WriteXYZ writes points in the format read by ReadXYZ, with normals where
// present.
func WriteXYZ(w io.Writer, points []*voxel.Point) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		writeFloats(bw, p.X, p.Y, p.Z)
		if p.Normal != nil {
			bw.WriteByte(' ')
			writeFloats(bw, p.Normal.X, p.Normal.Y, p.Normal.Z)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
