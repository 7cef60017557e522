// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxmesh

import (
	"math"

	"github.com/golang/geo/r3"
)

// crossTol is relative to the largest edge involved in a test.
const crossTol = 1e-9

// Crosses reports whether f and g intersect anywhere other than at shared
// vertices or along a shared edge. Coplanar faces cross when they overlap.
func (f Face) Crosses(g Face) bool {
	lo1, hi1 := f.bounds()
	lo2, hi2 := g.bounds()
	if lo1.X > hi2.X || lo2.X > hi1.X ||
		lo1.Y > hi2.Y || lo2.Y > hi1.Y ||
		lo1.Z > hi2.Z || lo2.Z > hi1.Z {
		return false
	}
	return f.piercedBy(g) || g.piercedBy(f)
}

// piercedBy reports whether an edge of g passes through the interior of f.
func (f Face) piercedBy(g Face) bool {
	for i := range 3 {
		if f.segmentCrosses(g[i].Vector, g[(i+1)%3].Vector) {
			return true
		}
	}
	return false
}

func (f Face) segmentCrosses(p0, p1 r3.Vector) bool {
	v0, v1, v2 := f[0].Vector, f[1].Vector, f[2].Vector
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	nn := n.Norm()
	if nn == 0 {
		return false
	}
	n = n.Mul(1 / nn)
	tol := crossTol * max(v0.Distance(v1), v1.Distance(v2), v2.Distance(v0), p0.Distance(p1))

	d0, d1 := n.Dot(p0.Sub(v0)), n.Dot(p1.Sub(v0))
	on0, on1 := math.Abs(d0) <= tol, math.Abs(d1) <= tol
	switch {
	case on0 && on1:
		return f.coplanarCrosses(p0, p1, n, tol)
	case d0 > tol && d1 > tol, d0 < -tol && d1 < -tol:
		return false
	case on0:
		return f.strictlyContains(p0, n, tol)
	case on1:
		return f.strictlyContains(p1, n, tol)
	}
	return f.strictlyContains(p0.Add(p1.Sub(p0).Mul(d0/(d0-d1))), n, tol)
}

// coplanarCrosses handles a segment lying in the plane of f.
func (f Face) coplanarCrosses(p0, p1, n r3.Vector, tol float64) bool {
	if f.strictlyContains(p0, n, tol) || f.strictlyContains(p1, n, tol) ||
		f.strictlyContains(p0.Add(p1).Mul(0.5), n, tol) {
		return true
	}
	for i := range 3 {
		a, b := f[i].Vector, f[(i+1)%3].Vector
		if opposite(side(p0, p1, a, n), side(p0, p1, b, n), tol) &&
			opposite(side(a, b, p0, n), side(a, b, p1, n), tol) {
			return true
		}
	}
	return false
}

// strictlyContains reports whether x, taken in the plane of f, lies farther
// than tol from every edge on the inner side.
func (f Face) strictlyContains(x, n r3.Vector, tol float64) bool {
	for i := range 3 {
		if side(f[i].Vector, f[(i+1)%3].Vector, x, n) <= tol {
			return false
		}
	}
	return true
}

func (f Face) bounds() (lo, hi r3.Vector) {
	lo, hi = f[0].Vector, f[0].Vector
	for _, p := range f[1:] {
		lo = r3.Vector{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vector{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// side returns the signed distance of c from the line ab, positive on the
// left when looking down n.
func side(a, b, c, n r3.Vector) float64 {
	ab := b.Sub(a)
	l := ab.Norm()
	if l == 0 {
		return 0
	}
	return ab.Cross(c.Sub(a)).Dot(n) / l
}

func opposite(x, y, tol float64) bool {
	return (x > tol && y < -tol) || (x < -tol && y > tol)
}
