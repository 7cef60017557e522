// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package objio reads point clouds and writes triangle meshes in the
// Wavefront OBJ subset (v, vn and f records) and the plain XYZ format.

package objio

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/2dChan/voxmesh"
	"github.com/2dChan/voxmesh/voxel"
)

type Options struct {
	Colors  bool
	Normals bool
}

type Option func(*Options) error

// WithColors appends the point color to each vertex record that has one.
func WithColors() Option {
	return func(o *Options) error {
		o.Colors = true
		return nil
	}
}

// WithNormals writes one vn record per vertex and references it from faces.
// Vertices without a normal get a zero normal.
func WithNormals() Option {
	return func(o *Options) error {
		o.Normals = true
		return nil
	}
}

// Write writes m to w. Vertices are emitted in ascending point index and faces
// reference them by 1-based position.
func Write(w io.Writer, m *voxmesh.Mesh, setters ...Option) error {
	var opts Options
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return err
		}
	}

	points := slices.Clone(m.Points)
	slices.SortStableFunc(points, func(a, b *voxel.Point) int {
		return cmp.Compare(a.Index(), b.Index())
	})
	pos := make(map[*voxel.Point]int, len(points))
	for i, p := range points {
		pos[p] = i + 1
	}

	bw := bufio.NewWriter(w)
	for _, p := range points {
		bw.WriteString("v ")
		writeFloats(bw, p.X, p.Y, p.Z)
		if opts.Colors && p.Color != nil {
			bw.WriteByte(' ')
			writeFloats(bw, p.Color.R, p.Color.G, p.Color.B)
		}
		bw.WriteByte('\n')
	}
	if opts.Normals {
		for _, p := range points {
			bw.WriteString("vn ")
			if p.Normal != nil {
				writeFloats(bw, p.Normal.X, p.Normal.Y, p.Normal.Z)
			} else {
				writeFloats(bw, 0, 0, 0)
			}
			bw.WriteByte('\n')
		}
	}

	for i, f := range m.Faces {
		var idx [3]int
		for j, p := range f {
			n, ok := pos[p]
			if !ok {
				return fmt.Errorf("objio: face %d references a point outside the mesh", i)
			}
			idx[j] = n
		}
		if opts.Normals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", idx[0], idx[0], idx[1], idx[1], idx[2], idx[2])
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", idx[0], idx[1], idx[2])
		}
	}
	return bw.Flush()
}

func writeFloats(bw *bufio.Writer, vs ...float64) {
	for i, v := range vs {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// Read reads the vertices of an OBJ stream as points. A v record may carry
// an r g b color. vn records are attached to vertices by order when their
// count matches the vertex count; other records are ignored.
func Read(r io.Reader) ([]*voxel.Point, error) {
	var (
		points  []*voxel.Point
		normals [][3]float64
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objio: line %d: %w", line, err)
			}
			switch len(vals) {
			case 3, 4:
				// A fourth value is the optional w weight.
				points = append(points, voxel.NewPoint(vals[0], vals[1], vals[2]))
			case 6:
				points = append(points, voxel.NewPoint(vals[0], vals[1], vals[2]).WithColor(vals[3], vals[4], vals[5]))
			default:
				return nil, fmt.Errorf("objio: line %d: vertex has %d values", line, len(vals))
			}
		case "vn":
			vals, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objio: line %d: %w", line, err)
			}
			if len(vals) != 3 {
				return nil, fmt.Errorf("objio: line %d: normal has %d values", line, len(vals))
			}
			normals = append(normals, [3]float64{vals[0], vals[1], vals[2]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objio: %w", err)
	}

	if len(normals) == len(points) {
		for i, n := range normals {
			points[i].WithNormal(n[0], n[1], n[2])
		}
	}
	return points, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite value %q", f)
		}
		vals[i] = v
	}
	return vals, nil
}
