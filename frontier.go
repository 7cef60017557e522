// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxmesh

import (
	"math"

	"github.com/2dChan/voxmesh/voxel"
)

// Edge is an undirected edge awaiting a third vertex.
type Edge struct {
	A, B *voxel.Point
}

// Frontier holds the queue of active edges together with the adjacency and
// face bookkeeping of the mesh being grown.
type Frontier struct {
	queue    []Edge
	adjacent map[*voxel.Point][]*voxel.Point
	edges    map[edgeKey]struct{}
	// Third vertices of the faces on each edge.
	incident map[edgeKey][]*voxel.Point
	faces    map[faceKey]struct{}
	around   map[*voxel.Point][]Face
}

func NewFrontier() *Frontier {
	return &Frontier{
		adjacent: make(map[*voxel.Point][]*voxel.Point),
		edges:    make(map[edgeKey]struct{}),
		incident: make(map[edgeKey][]*voxel.Point),
		faces:    make(map[faceKey]struct{}),
		around:   make(map[*voxel.Point][]Face),
	}
}

// Push appends (a, b) to the queue.
func (f *Frontier) Push(a, b *voxel.Point) {
	f.queue = append(f.queue, Edge{A: a, B: b})
}

// Pop removes the oldest edge from the queue.
func (f *Frontier) Pop() (Edge, bool) {
	if len(f.queue) == 0 {
		return Edge{}, false
	}
	e := f.queue[0]
	f.queue[0] = Edge{}
	f.queue = f.queue[1:]
	return e, true
}

// Len returns the number of queued edges.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Connect records an edge between a and b. It is a no-op if one exists.
func (f *Frontier) Connect(a, b *voxel.Point) {
	k := newEdgeKey(a, b)
	if _, ok := f.edges[k]; ok {
		return
	}
	f.edges[k] = struct{}{}
	f.adjacent[a] = append(f.adjacent[a], b)
	f.adjacent[b] = append(f.adjacent[b], a)
}

// Connected reports whether an edge between a and b exists.
func (f *Frontier) Connected(a, b *voxel.Point) bool {
	_, ok := f.edges[newEdgeKey(a, b)]
	return ok
}

// Adjacent returns the points sharing an edge with p.
func (f *Frontier) Adjacent(p *voxel.Point) []*voxel.Point {
	return f.adjacent[p]
}

// AddFace records the face (a, b, c). It returns false if the face already
// exists in any vertex order.
func (f *Frontier) AddFace(a, b, c *voxel.Point) bool {
	k := newFaceKey(a, b, c)
	if _, ok := f.faces[k]; ok {
		return false
	}
	f.faces[k] = struct{}{}
	for _, e := range [3][3]*voxel.Point{{a, b, c}, {b, c, a}, {c, a, b}} {
		ek := newEdgeKey(e[0], e[1])
		f.incident[ek] = append(f.incident[ek], e[2])
		f.around[e[0]] = append(f.around[e[0]], Face{a, b, c})
	}
	return true
}

// HasFace reports whether the face (a, b, c) exists in any vertex order.
func (f *Frontier) HasFace(a, b, c *voxel.Point) bool {
	_, ok := f.faces[newFaceKey(a, b, c)]
	return ok
}

// NumFaces returns the number of recorded faces.
func (f *Frontier) NumFaces() int {
	return len(f.faces)
}

// FaceCount returns the number of faces using the edge (a, b).
func (f *Frontier) FaceCount(a, b *voxel.Point) int {
	return len(f.incident[newEdgeKey(a, b)])
}

// IsInterior reports whether (a, b) is a connected edge shared by two faces.
func (f *Frontier) IsInterior(a, b *voxel.Point) bool {
	return f.Connected(a, b) && f.FaceCount(a, b) >= 2
}

// FacesAround returns the faces having p as a vertex.
func (f *Frontier) FacesAround(p *voxel.Point) []Face {
	return f.around[p]
}

// IsClosed reports whether p has edges and every one of them is interior.
func (f *Frontier) IsClosed(p *voxel.Point) bool {
	adj := f.adjacent[p]
	if len(adj) == 0 {
		return false
	}
	for _, q := range adj {
		if f.FaceCount(p, q) < 2 {
			return false
		}
	}
	return true
}

// Opposite returns the third vertex of the first face recorded on (a, b).
func (f *Frontier) Opposite(a, b *voxel.Point) (*voxel.Point, bool) {
	third := f.incident[newEdgeKey(a, b)]
	if len(third) == 0 {
		return nil, false
	}
	return third[0], true
}

// edgeRange returns the shortest and longest edge lengths incident to p, or
// zeros if p has no edge.
func (f *Frontier) edgeRange(p *voxel.Point) (shortest, longest float64) {
	adj := f.adjacent[p]
	if len(adj) == 0 {
		return 0, 0
	}
	shortest = math.Inf(1)
	for _, q := range adj {
		d := p.Distance(q)
		shortest = min(shortest, d)
		longest = max(longest, d)
	}
	return shortest, longest
}

// SamplingUniformity returns the ratio of the longest to the shortest edge
// incident to p. It is +Inf for a zero-length edge and NaN without edges.
func (f *Frontier) SamplingUniformity(p *voxel.Point) float64 {
	shortest, longest := f.edgeRange(p)
	if len(f.adjacent[p]) == 0 {
		return math.NaN()
	}
	if shortest == 0 {
		return math.Inf(1)
	}
	return longest / shortest
}
