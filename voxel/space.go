// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package voxel implements a uniform-grid spatial index over scanned points.

package voxel

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/golang/geo/r3"
)

const (
	// DefaultMaxLayers bounds neighbor searches, in cells, when no limit is given.
	DefaultMaxLayers = 10

	defaultEps = 1e-12
)

var (
	ErrInvalidVoxelSize = errors.New("voxel: voxel size must be positive")
	ErrInvalidMaxLayers = errors.New("voxel: max layers must be positive")
	ErrAlreadyIndexed   = errors.New("voxel: point already indexed")
	ErrNilPoint         = errors.New("voxel: nil point")
	ErrNonFinite        = errors.New("voxel: non-finite coordinate")
)

// Key identifies a cell: (floor(x/s), floor(y/s), floor(z/s)).
type Key struct {
	X, Y, Z int
}

func minKey(a, b Key) Key {
	return Key{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func maxKey(a, b Key) Key {
	return Key{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

type SpaceOptions struct {
	MaxLayers int
}

type SpaceOption func(*SpaceOptions) error

// WithMaxLayers sets the default layer cap used by neighbor searches that are
// given a non-positive limit.
func WithMaxLayers(n int) SpaceOption {
	return func(o *SpaceOptions) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxLayers, n)
		}
		o.MaxLayers = n
		return nil
	}
}

// Space buckets points into cubic cells of a fixed size.
type Space struct {
	size      float64
	maxLayers int
	cells     map[Key][]*Point
	nextIndex int

	// Bounds of occupied cell keys, valid once the space holds a point.
	lo, hi  Key
	highest *Point
}

// NewSpace returns an empty Space with cells of edge length size.
func NewSpace(size float64, setters ...SpaceOption) (*Space, error) {
	if !(size > 0) || math.IsInf(size, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoxelSize, size)
	}
	opts := SpaceOptions{
		MaxLayers: DefaultMaxLayers,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	return &Space{
		size:      size,
		maxLayers: opts.MaxLayers,
		cells:     make(map[Key][]*Point),
		nextIndex: 1,
	}, nil
}

// VoxelSize returns the cell edge length.
func (s *Space) VoxelSize() float64 {
	return s.size
}

// MaxLayers returns the default layer cap of neighbor searches.
func (s *Space) MaxLayers() int {
	return s.maxLayers
}

// Len returns the number of points in the space.
func (s *Space) Len() int {
	return s.nextIndex - 1
}

// NumVoxels returns the number of non-empty cells.
func (s *Space) NumVoxels() int {
	return len(s.cells)
}

// AveragePointsPerVoxel returns Len()/NumVoxels(), or 0 for an empty space.
func (s *Space) AveragePointsPerVoxel() float64 {
	if len(s.cells) == 0 {
		return 0
	}
	return float64(s.Len()) / float64(len(s.cells))
}

func (s *Space) String() string {
	return fmt.Sprintf("Space<voxelSize=%v, #voxels=%d, #points=%d, avg(points/voxel)=%.3f>",
		s.size, s.NumVoxels(), s.Len(), s.AveragePointsPerVoxel())
}

// KeyFor returns the key of the cell containing v.
func (s *Space) KeyFor(v r3.Vector) Key {
	return Key{
		X: int(math.Floor(v.X / s.size)),
		Y: int(math.Floor(v.Y / s.size)),
		Z: int(math.Floor(v.Z / s.size)),
	}
}

// Add inserts p and assigns it the next index, starting at 1. Points with a
// NaN or infinite coordinate are rejected.
func (s *Space) Add(p *Point) error {
	if p == nil {
		return ErrNilPoint
	}
	if p.index != 0 {
		return fmt.Errorf("%w: %v", ErrAlreadyIndexed, p)
	}
	for _, c := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: %v", ErrNonFinite, p)
		}
	}

	k := s.KeyFor(p.Vector)
	if s.highest == nil {
		s.lo, s.hi = k, k
	} else {
		s.lo, s.hi = minKey(s.lo, k), maxKey(s.hi, k)
	}

	p.index = s.nextIndex
	s.nextIndex++
	s.cells[k] = append(s.cells[k], p)

	if s.highest == nil || p.Z > s.highest.Z {
		s.highest = p
	}
	return nil
}

// AddPoints inserts points in order. It stops at the first failure.
func (s *Space) AddPoints(points []*Point) error {
	for i, p := range points {
		if err := s.Add(p); err != nil {
			return fmt.Errorf("AddPoints: point %d: %w", i, err)
		}
	}
	return nil
}

// Bounds returns the inclusive box of occupied cell keys. ok is false for an
// empty space.
func (s *Space) Bounds() (lo, hi Key, ok bool) {
	if s.highest == nil {
		return Key{}, Key{}, false
	}
	return s.lo, s.hi, true
}

// Highest returns the point with the largest z seen so far, the first one
// inserted on ties, or nil for an empty space.
func (s *Space) Highest() *Point {
	return s.highest
}

// Voxel returns the points of cell k in insertion order.
func (s *Space) Voxel(k Key) []*Point {
	return s.cells[k]
}

// Points returns all points sorted by index.
func (s *Space) Points() []*Point {
	res := make([]*Point, 0, s.Len())
	for _, c := range s.cells {
		res = append(res, c...)
	}
	slices.SortFunc(res, func(a, b *Point) int {
		return a.index - b.index
	})
	return res
}

// VoxelsInLayer returns the non-empty cells whose Chebyshev distance d to
// center satisfies inner <= d < outer.
func (s *Space) VoxelsInLayer(center Key, inner, outer int) []Key {
	return s.shell(center, center, inner, outer)
}

// VoxelsInRegion returns the non-empty cells of the inclusive box spanned by
// a and b, in any order of corners.
func (s *Space) VoxelsInRegion(a, b Key) []Key {
	return s.shell(minKey(a, b), maxKey(a, b), 0, 1)
}

// VoxelsAroundRegion returns the non-empty cells exactly layer cells away
// from the box spanned by a and b.
func (s *Space) VoxelsAroundRegion(a, b Key, layer int) []Key {
	return s.shell(minKey(a, b), maxKey(a, b), layer, layer+1)
}

// PointsInVoxels returns a sequence over the points of keys. Each iteration
// reads the cells again.
func (s *Space) PointsInVoxels(keys []Key) iter.Seq[*Point] {
	return func(yield func(*Point) bool) {
		for _, k := range keys {
			for _, p := range s.cells[k] {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// PointsInCube returns the points within n cells of center.
func (s *Space) PointsInCube(center Key, n int) []*Point {
	return slices.Collect(s.PointsInVoxels(s.VoxelsInLayer(center, 0, n+1)))
}

// shell collects the non-empty cells whose Chebyshev distance d to the box
// [lo, hi] satisfies inner <= d < outer. The shell is split into six
// disjoint slabs so the core is never visited.
func (s *Space) shell(lo, hi Key, inner, outer int) []Key {
	if s.highest == nil || outer <= inner || outer <= 0 {
		return nil
	}
	inner = max(inner, 0)
	r := outer - 1

	var res []Key
	if inner == 0 {
		return s.collect(res, Key{lo.X - r, lo.Y - r, lo.Z - r}, Key{hi.X + r, hi.Y + r, hi.Z + r})
	}
	q := inner

	// Top and bottom.
	res = s.collect(res, Key{lo.X - r, lo.Y - r, lo.Z - r}, Key{hi.X + r, hi.Y + r, lo.Z - q})
	res = s.collect(res, Key{lo.X - r, lo.Y - r, hi.Z + q}, Key{hi.X + r, hi.Y + r, hi.Z + r})

	// Left and right.
	res = s.collect(res, Key{lo.X - r, lo.Y - r, lo.Z - q + 1}, Key{lo.X - q, hi.Y + r, hi.Z + q - 1})
	res = s.collect(res, Key{hi.X + q, lo.Y - r, lo.Z - q + 1}, Key{hi.X + r, hi.Y + r, hi.Z + q - 1})

	// Front and back.
	res = s.collect(res, Key{lo.X - q + 1, lo.Y - r, lo.Z - q + 1}, Key{hi.X + q - 1, lo.Y - q, hi.Z + q - 1})
	res = s.collect(res, Key{lo.X - q + 1, hi.Y + q, lo.Z - q + 1}, Key{hi.X + q - 1, hi.Y + r, hi.Z + q - 1})

	return res
}

// collect appends the non-empty cells of the inclusive box [a, b] clipped to
// the occupied bounds.
func (s *Space) collect(dst []Key, a, b Key) []Key {
	a, b = maxKey(a, s.lo), minKey(b, s.hi)
	for x := a.X; x <= b.X; x++ {
		for y := a.Y; y <= b.Y; y++ {
			for z := a.Z; z <= b.Z; z++ {
				k := Key{x, y, z}
				if len(s.cells[k]) > 0 {
					dst = append(dst, k)
				}
			}
		}
	}
	return dst
}

// ClosestPointTo returns the point nearest to q, searching shells of cells
// outward from q's cell for at most maxLayers layers (the space default when
// maxLayers <= 0). With distinct set, points at q's exact position are
// skipped.
//
// The search does not stop at the first non-empty shell: a point near the
// corner of shell i can be farther than one in shell i+1, so the result
// would not always be the nearest point. Later shells are scanned while
// their inner boundary, (i-1) cells from q, is closer than the best match.
// It panics on an empty space.
func (s *Space) ClosestPointTo(q *Point, maxLayers int, distinct bool) (*Point, bool) {
	if s.highest == nil {
		panic("ClosestPointTo: empty space")
	}
	if maxLayers <= 0 {
		maxLayers = s.maxLayers
	}

	c := s.KeyFor(q.Vector)
	var best *Point
	bestDist := math.Inf(1)
	for i := range maxLayers {
		if best != nil && float64(i-1)*s.size >= bestDist {
			break
		}
		for p := range s.PointsInVoxels(s.VoxelsInLayer(c, i, i+1)) {
			if distinct && p.Vector == q.Vector {
				continue
			}
			if d := q.Vector.Distance(p.Vector); d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	return best, best != nil
}

// ClosestPointToEdge returns the point p, distinct from a and b and not
// colinear with them, that minimizes |ap|+|bp|. It scans the cells of the box
// spanned by a and b first, then rings of cells around that box, for at most
// maxLayers rings (the space default when maxLayers <= 0). It panics on an
// empty space.
func (s *Space) ClosestPointToEdge(a, b *Point, maxLayers int) (*Point, bool) {
	if s.highest == nil {
		panic("ClosestPointToEdge: empty space")
	}
	if maxLayers <= 0 {
		maxLayers = s.maxLayers
	}

	ka, kb := s.KeyFor(a.Vector), s.KeyFor(b.Vector)
	ab := b.Vector.Sub(a.Vector)
	var best *Point
	bestScore := math.Inf(1)
	for layer := 0; layer <= maxLayers; layer++ {
		if best != nil && 2*float64(layer-1)*s.size >= bestScore {
			break
		}
		for p := range s.PointsInVoxels(s.VoxelsAroundRegion(ka, kb, layer)) {
			if p.Vector == a.Vector || p.Vector == b.Vector {
				continue
			}
			ap := p.Vector.Sub(a.Vector)
			if ab.Cross(ap).Norm() <= defaultEps*ab.Norm()*ap.Norm() {
				continue
			}
			if score := ap.Norm() + p.Vector.Distance(b.Vector); score < bestScore {
				best, bestScore = p, score
			}
		}
	}
	return best, best != nil
}
