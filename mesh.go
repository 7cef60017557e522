// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package voxmesh reconstructs triangle meshes from scanned point clouds by
// growing a surface outward from a seed triangle.

package voxmesh

import (
	"fmt"
	"slices"

	"github.com/2dChan/voxmesh/voxel"
	"github.com/golang/geo/r3"
)

// Face is a triangle over indexed points. Vertex order carries no meaning.
type Face [3]*voxel.Point

type faceKey [3]int

type edgeKey [2]int

func newFaceKey(a, b, c *voxel.Point) faceKey {
	k := faceKey{a.Index(), b.Index(), c.Index()}
	slices.Sort(k[:])
	return k
}

func newEdgeKey(a, b *voxel.Point) edgeKey {
	i, j := a.Index(), b.Index()
	if i > j {
		i, j = j, i
	}
	return edgeKey{i, j}
}

// Indices returns the vertex indices of f in vertex order.
func (f Face) Indices() [3]int {
	return [3]int{f[0].Index(), f[1].Index(), f[2].Index()}
}

// Normal returns the unnormalized normal (f1-f0)x(f2-f0).
func (f Face) Normal() r3.Vector {
	return f[1].Sub(f[0].Vector).Cross(f[2].Sub(f[0].Vector))
}

// Area returns the triangle area.
func (f Face) Area() float64 {
	return f.Normal().Norm() / 2
}

// Mesh is a set of points, sorted by index, and the faces over them.
type Mesh struct {
	Points []*voxel.Point
	Faces  []Face
}

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

// EdgeFaceCounts returns, per undirected edge, the number of faces using it.
func (m *Mesh) EdgeFaceCounts() map[[2]int]int {
	res := make(map[[2]int]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for i := range 3 {
			res[newEdgeKey(f[i], f[(i+1)%3])]++
		}
	}
	return res
}

// BoundaryEdges returns the number of edges used by exactly one face.
func (m *Mesh) BoundaryEdges() int {
	n := 0
	for _, c := range m.EdgeFaceCounts() {
		if c == 1 {
			n++
		}
	}
	return n
}

// Validate checks that every face references three distinct points of the
// mesh and that no two faces share the same vertex set.
func (m *Mesh) Validate() error {
	known := make(map[*voxel.Point]struct{}, len(m.Points))
	for _, p := range m.Points {
		known[p] = struct{}{}
	}

	seen := make(map[faceKey]int, len(m.Faces))
	for i, f := range m.Faces {
		for _, p := range f {
			if p == nil {
				return fmt.Errorf("Validate: face %d has a nil vertex", i)
			}
			if _, ok := known[p]; !ok {
				return fmt.Errorf("Validate: face %d references unknown point %v", i, p)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("Validate: face %d repeats a vertex %v", i, f.Indices())
		}
		k := newFaceKey(f[0], f[1], f[2])
		if j, ok := seen[k]; ok {
			return fmt.Errorf("Validate: faces %d and %d share vertices %v", j, i, k)
		}
		seen[k] = i
	}
	return nil
}

// Crossings returns the index pairs of faces that intersect other than at
// shared vertices or along a shared edge.
func (m *Mesh) Crossings() [][2]int {
	var res [][2]int
	for i, f := range m.Faces {
		for j := i + 1; j < len(m.Faces); j++ {
			if f.Crosses(m.Faces[j]) {
				res = append(res, [2]int{i, j})
			}
		}
	}
	return res
}
