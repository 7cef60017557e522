// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxmesh

import (
	"fmt"

	"github.com/2dChan/voxmesh/voxel"
)

// Topology indexes the faces incident to each point of a Mesh. Vertex i is
// Mesh.Points[i].
type Topology struct {
	Mesh *Mesh

	IncidentFaceIndices []int
	IncidentFaceOffsets []int
}

// NewTopology builds the incidence index of m. It panics if a face references
// a point outside m.Points; Validate reports that as an error.
func NewTopology(m *Mesh) *Topology {
	numVertices := len(m.Points)
	pos := make(map[*voxel.Point]int, numVertices)
	for i, p := range m.Points {
		pos[p] = i
	}
	vertexOf := func(p *voxel.Point) int {
		v, ok := pos[p]
		if !ok {
			panic(fmt.Sprintf("NewTopology: point %v not in mesh", p))
		}
		return v
	}

	t := &Topology{
		Mesh:                m,
		IncidentFaceIndices: make([]int, len(m.Faces)*3),
		IncidentFaceOffsets: make([]int, numVertices+1),
	}
	for _, f := range m.Faces {
		for _, p := range f {
			t.IncidentFaceOffsets[vertexOf(p)+1]++
		}
	}
	for i := range numVertices {
		t.IncidentFaceOffsets[i+1] += t.IncidentFaceOffsets[i]
	}

	nxt := make([]int, numVertices)
	copy(nxt, t.IncidentFaceOffsets[:numVertices])
	for i, f := range m.Faces {
		for _, p := range f {
			v := vertexOf(p)
			t.IncidentFaceIndices[nxt[v]] = i
			nxt[v]++
		}
	}
	return t
}

func (t *Topology) NumVertices() int {
	return len(t.Mesh.Points)
}

// Vertex returns a view of vertex i. It panics if i is out of range.
func (t *Topology) Vertex(i int) Vertex {
	if i < 0 || i >= t.NumVertices() {
		panic(fmt.Sprintf("Vertex: index %d out of range [0 %d)", i, t.NumVertices()))
	}
	return Vertex{idx: i, t: t}
}

// Isolated returns the number of vertices used by no face.
func (t *Topology) Isolated() int {
	n := 0
	for i := range t.NumVertices() {
		if t.Vertex(i).NumFaces() == 0 {
			n++
		}
	}
	return n
}

// Vertex is a view of a point of a Topology.
type Vertex struct {
	idx int
	t   *Topology
}

func (v Vertex) Index() int {
	return v.idx
}

func (v Vertex) Point() *voxel.Point {
	return v.t.Mesh.Points[v.idx]
}

// NumFaces returns the number of faces using the vertex.
func (v Vertex) NumFaces() int {
	return v.t.IncidentFaceOffsets[v.idx+1] - v.t.IncidentFaceOffsets[v.idx]
}

// FaceIndices returns the indices in Mesh.Faces of the faces using the vertex.
func (v Vertex) FaceIndices() []int {
	return v.t.IncidentFaceIndices[v.t.IncidentFaceOffsets[v.idx]:v.t.IncidentFaceOffsets[v.idx+1]]
}

// Neighbors returns the points sharing a face with the vertex, in order of
// first appearance.
func (v Vertex) Neighbors() []*voxel.Point {
	self := v.Point()
	seen := make(map[*voxel.Point]struct{})
	var res []*voxel.Point
	for _, fi := range v.FaceIndices() {
		for _, p := range v.t.Mesh.Faces[fi] {
			if p == self {
				continue
			}
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				res = append(res, p)
			}
		}
	}
	return res
}

// IsBoundary reports whether the faces around the vertex leave an edge used
// by a single face. An isolated vertex is not on the boundary.
func (v Vertex) IsBoundary() bool {
	self := v.Point()
	uses := make(map[*voxel.Point]int)
	for _, fi := range v.FaceIndices() {
		for _, p := range v.t.Mesh.Faces[fi] {
			if p != self {
				uses[p]++
			}
		}
	}
	for _, n := range uses {
		if n == 1 {
			return true
		}
	}
	return false
}
