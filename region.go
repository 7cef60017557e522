// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxmesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// containsTol is the slack allowed on prism coordinates by Region.Contains.
const containsTol = 1e-9

var ErrDegenerateRegion = errors.New("voxmesh: degenerate influence region")

// Extrusion selects the side of an active edge toward which its influence
// region is extruded.
type Extrusion int

const (
	// ExtrudeOutward extrudes away from the third vertex of the known face.
	ExtrudeOutward Extrusion = iota
	// ExtrudeInward extrudes toward the third vertex of the known face.
	ExtrudeInward
)

func (e Extrusion) String() string {
	switch e {
	case ExtrudeOutward:
		return "outward"
	case ExtrudeInward:
		return "inward"
	}
	return fmt.Sprintf("Extrusion(%d)", int(e))
}

// ParseExtrusion parses "outward" or "inward".
func ParseExtrusion(s string) (Extrusion, error) {
	switch s {
	case "outward":
		return ExtrudeOutward, nil
	case "inward":
		return ExtrudeInward, nil
	}
	return 0, fmt.Errorf("voxmesh: unknown extrusion %q", s)
}

// Region is the influence region of an active edge: a triangular prism whose
// base is the triangle (P, aaa, bbb), P being the barycenter of the known
// face, extended by +-H, H being the unit face normal times the scale.
type Region struct {
	// Corners holds P+H, P-H, aaa+H, aaa-H, bbb+H, bbb-H.
	Corners [6]r3.Vector

	origin r3.Vector
	// Maps an offset from origin to prism coordinates.
	inv *mat.Dense
}

// NewRegion computes the influence region of the active edge (a, b) whose
// known face has third vertex pk. scale is both the extrusion distance past
// the edge and the half-height of the prism.
func NewRegion(a, b, pk r3.Vector, scale float64, side Extrusion) (*Region, error) {
	if !(scale > 0) || math.IsInf(scale, 1) {
		return nil, fmt.Errorf("%w: scale %v", ErrDegenerateRegion, scale)
	}

	p := a.Add(b).Add(pk).Mul(1.0 / 3)
	n := a.Sub(pk).Cross(b.Sub(pk))

	n5 := b.Sub(a).Cross(n)
	if n5.Norm() == 0 {
		return nil, fmt.Errorf("%w: zero extrusion direction", ErrDegenerateRegion)
	}
	n5 = n5.Normalize()
	towardPk := n5.Dot(pk.Sub(a.Add(b).Mul(0.5))) > 0
	if towardPk == (side == ExtrudeOutward) {
		n5 = n5.Mul(-1)
	}

	aa := a.Add(n5.Mul(scale))
	bb := b.Add(n5.Mul(scale))

	// bbb lies on the extruded edge and on the line through P and b; aaa
	// likewise for a.
	x, err := solve3(bb.Sub(aa), b.Sub(p), n, p.Sub(aa))
	if err != nil {
		return nil, err
	}
	bbb := aa.Add(bb.Sub(aa).Mul(x.X))
	x, err = solve3(aa.Sub(bb), a.Sub(p), n, p.Sub(bb))
	if err != nil {
		return nil, err
	}
	aaa := bb.Add(aa.Sub(bb).Mul(x.X))

	h := n.Normalize().Mul(scale)
	var inv mat.Dense
	if err := inv.Inverse(columns(aaa.Sub(p), bbb.Sub(p), h.Mul(2))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateRegion, err)
	}

	return &Region{
		Corners: [6]r3.Vector{
			p.Add(h), p.Sub(h),
			aaa.Add(h), aaa.Sub(h),
			bbb.Add(h), bbb.Sub(h),
		},
		origin: p.Sub(h),
		inv:    &inv,
	}, nil
}

// Bounds returns the axis-aligned box of the corners.
func (r *Region) Bounds() (lo, hi r3.Vector) {
	lo, hi = r.Corners[0], r.Corners[0]
	for _, c := range r.Corners[1:] {
		lo = r3.Vector{X: min(lo.X, c.X), Y: min(lo.Y, c.Y), Z: min(lo.Z, c.Z)}
		hi = r3.Vector{X: max(hi.X, c.X), Y: max(hi.Y, c.Y), Z: max(hi.Z, c.Z)}
	}
	return lo, hi
}

// Contains reports whether v lies in the prism.
func (r *Region) Contains(v r3.Vector) bool {
	d := v.Sub(r.origin)
	var c mat.VecDense
	c.MulVec(r.inv, mat.NewVecDense(3, []float64{d.X, d.Y, d.Z}))
	u, w, h := c.AtVec(0), c.AtVec(1), c.AtVec(2)
	for _, x := range [3]float64{u, w, h} {
		if math.IsNaN(x) || x < -containsTol || x > 1+containsTol {
			return false
		}
	}
	return u+w <= 1+containsTol
}

// solve3 solves [c1 c2 c3] x = rhs.
func solve3(c1, c2, c3, rhs r3.Vector) (r3.Vector, error) {
	var x mat.VecDense
	if err := x.SolveVec(columns(c1, c2, c3), mat.NewVecDense(3, []float64{rhs.X, rhs.Y, rhs.Z})); err != nil {
		return r3.Vector{}, fmt.Errorf("%w: %v", ErrDegenerateRegion, err)
	}
	return r3.Vector{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}, nil
}

func columns(c1, c2, c3 r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		c1.X, c2.X, c3.X,
		c1.Y, c2.Y, c3.Y,
		c1.Z, c2.Z, c3.Z,
	})
}
