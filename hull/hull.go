// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package hull builds closed meshes over a point cloud from a convex hull,
// either of the points themselves or of their projection on a sphere.

package hull

import (
	"errors"
	"fmt"

	"github.com/2dChan/voxmesh"
	"github.com/2dChan/voxmesh/voxel"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/markus-wa/quickhull-go/v2"
)

const (
	defaultEps = 1e-12
)

var (
	ErrNilSpace         = errors.New("hull: nil space")
	ErrTooFewPoints     = errors.New("hull: insufficient points for a hull (minimum 4 required)")
	ErrDegenerate       = errors.New("hull: points are coplanar")
	ErrInconsistentHull = errors.New("hull: inconsistent number of indices returned from QuickHull")
)

type Options struct {
	Eps float64
}

type Option func(*Options) error

func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// Convex returns the convex hull of the points of space. Points inside the
// hull are kept in the mesh but belong to no face. Faces are CCW seen from
// outside.
func Convex(space *voxel.Space, setters ...Option) (*voxmesh.Mesh, error) {
	points, opts, err := prepare(space, setters)
	if err != nil {
		return nil, err
	}

	vectors := make([]r3.Vector, len(points))
	for i, p := range points {
		vectors[i] = p.Vector
	}
	if !spans3D(vectors, opts.Eps) {
		return nil, ErrDegenerate
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(vectors, true, true, opts.Eps)
	if len(ch.Indices) == 0 || len(ch.Indices)%3 != 0 {
		return nil, ErrInconsistentHull
	}
	return buildMesh(points, vectors, centroid(vectors), ch.Indices), nil
}

// Radial triangulates a star-shaped cloud: every point is projected on the
// unit sphere about the centroid, the projection is triangulated by its
// convex hull and the faces are mapped back to the original points. Every
// point becomes a vertex of the mesh, so no two points may share a direction
// from the centroid.
func Radial(space *voxel.Space, setters ...Option) (*voxmesh.Mesh, error) {
	points, opts, err := prepare(space, setters)
	if err != nil {
		return nil, err
	}

	positions := make([]r3.Vector, len(points))
	for i, p := range points {
		positions[i] = p.Vector
	}
	c := centroid(positions)

	directions := make([]r3.Vector, len(points))
	for i, v := range positions {
		d := v.Sub(c)
		if d.Norm() == 0 {
			return nil, fmt.Errorf("hull: point %v lies at the centroid", points[i])
		}
		directions[i] = s2.PointFromCoords(d.X, d.Y, d.Z).Vector
	}
	if !spans3D(directions, opts.Eps) {
		return nil, ErrDegenerate
	}

	numTriangles := 2 * (len(points) - 2)
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(directions, true, true, opts.Eps)
	if len(ch.Indices) != numTriangles*3 {
		return nil, ErrInconsistentHull
	}
	return buildMesh(points, directions, r3.Vector{}, ch.Indices), nil
}

func prepare(space *voxel.Space, setters []Option) ([]*voxel.Point, Options, error) {
	opts := Options{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, opts, err
		}
	}
	if space == nil {
		return nil, opts, ErrNilSpace
	}
	if space.Len() < 4 {
		return nil, opts, ErrTooFewPoints
	}
	return space.Points(), opts, nil
}

// buildMesh orients each hull triangle CCW seen from center, using the
// vectors the hull was computed on.
func buildMesh(points []*voxel.Point, v []r3.Vector, center r3.Vector, indices []int) *voxmesh.Mesh {
	faces := make([]voxmesh.Face, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		t := [3]int{indices[i], indices[i+1], indices[i+2]}
		sortTriangleVerticesCCW(&t, v, center)
		faces = append(faces, voxmesh.Face{points[t[0]], points[t[1]], points[t[2]]})
	}
	return &voxmesh.Mesh{Points: points, Faces: faces}
}

func sortTriangleVerticesCCW(t *[3]int, v []r3.Vector, center r3.Vector) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	norm := p1.Sub(p0).Cross(p2.Sub(p0))
	if norm.Dot(p0.Sub(center)) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}

func centroid(v []r3.Vector) r3.Vector {
	var c r3.Vector
	for _, p := range v {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(v)))
}

// spans3D reports whether v holds four points that are not coplanar.
func spans3D(v []r3.Vector, eps float64) bool {
	a := v[0]
	b, far := a, 0.0
	for _, p := range v {
		if d := p.Distance(a); d > far {
			b, far = p, d
		}
	}
	if far <= eps {
		return false
	}

	ab := b.Sub(a)
	n, area := r3.Vector{}, 0.0
	for _, p := range v {
		if c := ab.Cross(p.Sub(a)); c.Norm() > area {
			n, area = c, c.Norm()
		}
	}
	if area <= eps*far {
		return false
	}

	n = n.Normalize()
	for _, p := range v {
		if h := n.Dot(p.Sub(a)); h > eps*far || -h > eps*far {
			return true
		}
	}
	return false
}
