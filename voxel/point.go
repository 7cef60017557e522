// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxel

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Color is an RGB color with channels normalized to [0, 1].
type Color struct {
	R, G, B float64
}

// Point is a scanned sample. Its position never changes after creation; the
// index is assigned once, when the point is added to a Space.
type Point struct {
	r3.Vector

	// Color is nil when the sample carries no color.
	Color *Color
	// Normal is a unit vector, nil when the sample carries no normal.
	Normal *r3.Vector

	index int
}

// NewPoint returns an unindexed point at (x, y, z).
func NewPoint(x, y, z float64) *Point {
	return &Point{Vector: r3.Vector{X: x, Y: y, Z: z}}
}

// PointFromVector returns an unindexed point at v.
func PointFromVector(v r3.Vector) *Point {
	return &Point{Vector: v}
}

// WithColor sets the point color and returns p. Channels given on a 0-255
// scale (any channel above 1) are divided by 255.
func (p *Point) WithColor(r, g, b float64) *Point {
	if r > 1 || g > 1 || b > 1 {
		r, g, b = r/255, g/255, b/255
	}
	p.Color = &Color{R: r, G: g, B: b}
	return p
}

// WithNormal sets the point normal and returns p. The normal is normalized;
// a zero vector clears it.
func (p *Point) WithNormal(nx, ny, nz float64) *Point {
	n := r3.Vector{X: nx, Y: ny, Z: nz}
	if n.Norm() == 0 {
		p.Normal = nil
		return p
	}
	n = n.Normalize()
	p.Normal = &n
	return p
}

// Index returns the 1-based insertion index, or 0 if the point has not been
// added to a Space.
func (p *Point) Index() int {
	return p.index
}

// Equal reports whether p and o have the same position and index.
func (p *Point) Equal(o *Point) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Vector == o.Vector && p.index == o.index
}

// Distance returns the Euclidean distance between p and o.
func (p *Point) Distance(o *Point) float64 {
	return p.Vector.Distance(o.Vector)
}

func (p *Point) String() string {
	return fmt.Sprintf("Point<%v, %v, %v, #%d>", p.X, p.Y, p.Z, p.index)
}
