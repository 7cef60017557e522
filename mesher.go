// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxmesh

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"slices"

	"github.com/2dChan/voxmesh/voxel"
	"github.com/golang/geo/r3"
)

const defaultEps = 1e-12

// DefaultEdgeFactor times the mean nearest-neighbor spacing of the cloud is
// the default longest edge growth may create.
const DefaultEdgeFactor = 4

// maxFoldCos is the cosine of the smallest angle, measured about the active
// edge, allowed between the known face and a new one.
const maxFoldCos = 0.5

var (
	ErrNilSpace       = errors.New("voxmesh: nil space")
	ErrTooFewPoints   = errors.New("voxmesh: at least 3 points are required")
	ErrDegenerateSeed = errors.New("voxmesh: cannot form a seed triangle")
	ErrAlreadySeeded  = errors.New("voxmesh: mesher already seeded")
	ErrNotSeeded      = errors.New("voxmesh: mesher not seeded")
	ErrFaceLimit      = errors.New("voxmesh: face limit reached")
)

// State is the stage of a Mesher.
type State int

const (
	StateSeeding State = iota
	StateGrowing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateGrowing:
		return "growing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Termination tells how growth ended.
type Termination int

const (
	// Completed means the frontier drained.
	Completed Termination = iota
	// Aborted means growth stopped early; the faces built so far are kept.
	Aborted
)

func (t Termination) String() string {
	switch t {
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

// Stats counts what happened to the edges popped during growth.
type Stats struct {
	Iterations int
	// Stale edges were already shared by two faces when popped.
	Stale int
	// Degenerate edges had no usable influence region.
	Degenerate int
	// Open edges found no candidate and stay on the mesh boundary.
	Open int
}

// Result describes the end of growth. Err is set when Termination is Aborted.
type Result struct {
	Termination Termination
	Err         error
	Stats       Stats
}

type Options struct {
	MaxLayers int
	MaxFaces  int
	// MaxEdge is the longest edge growth may create. Zero derives it from
	// the point spacing when seeding.
	MaxEdge   float64
	Extrusion Extrusion
	Logger    *log.Logger
}

type Option func(*Options) error

// WithMaxLayers bounds the neighbor searches used to build the seed triangle.
func WithMaxLayers(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("WithMaxLayers: max layers must be positive, got %d", n)
		}
		o.MaxLayers = n
		return nil
	}
}

// WithMaxFaces stops growth once the mesh holds n faces. Zero means no limit.
func WithMaxFaces(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return fmt.Errorf("WithMaxFaces: max faces must be non-negative, got %d", n)
		}
		o.MaxFaces = n
		return nil
	}
}

// WithMaxEdge bounds the length of edges created during growth. Zero means
// DefaultEdgeFactor times the mean nearest-neighbor spacing.
func WithMaxEdge(l float64) Option {
	return func(o *Options) error {
		if !(l >= 0) || math.IsInf(l, 1) {
			return fmt.Errorf("WithMaxEdge: max edge must be finite and non-negative, got %v", l)
		}
		o.MaxEdge = l
		return nil
	}
}

func WithExtrusion(e Extrusion) Option {
	return func(o *Options) error {
		if e != ExtrudeOutward && e != ExtrudeInward {
			return fmt.Errorf("WithExtrusion: invalid extrusion %v", e)
		}
		o.Extrusion = e
		return nil
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) error {
		if l == nil {
			return errors.New("WithLogger: nil logger")
		}
		o.Logger = l
		return nil
	}
}

// Mesher grows a mesh over the points of a Space. A Mesher owns its state and
// is not safe for concurrent use; independent clouds use independent Meshers.
type Mesher struct {
	space  *voxel.Space
	front  *Frontier
	faces  []Face
	opts   Options
	state  State
	result Result

	// Longest edge in the mesh so far.
	longest float64
}

func NewMesher(space *voxel.Space, setters ...Option) (*Mesher, error) {
	if space == nil {
		return nil, ErrNilSpace
	}
	opts := Options{
		MaxLayers: space.MaxLayers(),
		Extrusion: ExtrudeOutward,
		Logger:    log.New(io.Discard, "", 0),
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	return &Mesher{
		space: space,
		front: NewFrontier(),
		opts:  opts,
	}, nil
}

func (m *Mesher) State() State {
	return m.state
}

// MaxEdge returns the edge length bound in effect. It is zero before Seed
// when no bound was given.
func (m *Mesher) MaxEdge() float64 {
	return m.opts.MaxEdge
}

func (m *Mesher) Frontier() *Frontier {
	return m.front
}

// Faces returns the faces built so far. The slice must not be modified.
func (m *Mesher) Faces() []Face {
	return m.faces
}

// Mesh returns all points of the space and the faces built so far.
func (m *Mesher) Mesh() *Mesh {
	return &Mesh{
		Points: m.space.Points(),
		Faces:  slices.Clone(m.faces),
	}
}

// Seed builds the first triangle from the highest point P, its nearest
// neighbor Q and the point R minimizing |PR|+|QR|.
func (m *Mesher) Seed() error {
	if m.state != StateSeeding {
		return ErrAlreadySeeded
	}
	if m.space.Len() < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, m.space.Len())
	}

	p := m.space.Highest()
	q, ok := m.space.ClosestPointTo(p, m.opts.MaxLayers, true)
	if !ok {
		return fmt.Errorf("%w: no neighbor of %v within %d layers", ErrDegenerateSeed, p, m.opts.MaxLayers)
	}
	r, ok := m.space.ClosestPointToEdge(p, q, m.opts.MaxLayers)
	if !ok {
		return fmt.Errorf("%w: no point off the line %v %v", ErrDegenerateSeed, p, q)
	}

	if m.opts.MaxEdge == 0 {
		m.opts.MaxEdge = DefaultEdgeFactor * m.spacing()
	}

	m.addFace(p, q, r)
	m.front.Push(p, q)
	m.front.Push(p, r)
	m.front.Push(q, r)
	m.front.Connect(p, q)
	m.front.Connect(p, r)
	m.front.Connect(q, r)
	m.state = StateGrowing

	m.opts.Logger.Printf("seed triangle %d %d %d, max edge %g", p.Index(), q.Index(), r.Index(), m.opts.MaxEdge)
	return nil
}

// spacing returns the mean distance from each point to its nearest distinct
// neighbor within MaxLayers shells.
func (m *Mesher) spacing() float64 {
	var sum float64
	n := 0
	for _, p := range m.space.Points() {
		if q, ok := m.space.ClosestPointTo(p, m.opts.MaxLayers, true); ok {
			sum += p.Distance(q)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Grow closes active edges until the frontier drains. A failure inside a
// step stops growth with Aborted and keeps the faces built so far.
func (m *Mesher) Grow() Result {
	switch m.state {
	case StateSeeding:
		return Result{Termination: Aborted, Err: ErrNotSeeded}
	case StateDone:
		return m.result
	}

	m.result = Result{Termination: Completed}
	for m.front.Len() > 0 {
		if m.opts.MaxFaces > 0 && len(m.faces) >= m.opts.MaxFaces {
			m.result.Termination = Aborted
			m.result.Err = fmt.Errorf("%w: %d", ErrFaceLimit, m.opts.MaxFaces)
			break
		}
		if err := m.step(); err != nil {
			m.result.Termination = Aborted
			m.result.Err = err
			break
		}
	}
	m.state = StateDone

	s := m.result.Stats
	m.opts.Logger.Printf("growth %v: faces=%d iterations=%d stale=%d degenerate=%d open=%d",
		m.result.Termination, len(m.faces), s.Iterations, s.Stale, s.Degenerate, s.Open)
	if m.result.Err != nil {
		m.opts.Logger.Printf("growth stopped: %v", m.result.Err)
	}
	return m.result
}

type candidate struct {
	p     *voxel.Point
	score float64
}

// step pops one edge and tries to close it.
func (m *Mesher) step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("voxmesh: growth step: %v", r)
		}
	}()

	e, _ := m.front.Pop()
	a, b := e.A, e.B
	m.result.Stats.Iterations++

	if m.front.IsInterior(a, b) {
		m.result.Stats.Stale++
		return nil
	}

	region, err := m.influenceRegion(a, b)
	if errors.Is(err, ErrDegenerateRegion) {
		m.result.Stats.Degenerate++
		m.opts.Logger.Printf("discarding edge %d %d: %v", a.Index(), b.Index(), err)
		return nil
	}
	if err != nil {
		return err
	}

	pk, _ := m.front.Opposite(a, b)
	lo, hi := region.Bounds()
	keys := m.space.VoxelsInRegion(m.space.KeyFor(lo), m.space.KeyFor(hi))
	ab := b.Sub(a.Vector)
	var candidates []candidate
	for p := range m.space.PointsInVoxels(keys) {
		if p == a || p == b || p.Vector == a.Vector || p.Vector == b.Vector {
			continue
		}
		if m.front.HasFace(a, b, p) || m.front.IsInterior(p, a) || m.front.IsInterior(p, b) {
			continue
		}
		if m.front.IsClosed(p) || p.Distance(a) > m.opts.MaxEdge || p.Distance(b) > m.opts.MaxEdge {
			continue
		}
		ap := p.Sub(a.Vector)
		if ab.Cross(ap).Norm() <= defaultEps*ab.Norm()*ap.Norm() {
			continue
		}
		if foldCos(a.Vector, b.Vector, pk.Vector, p.Vector) > maxFoldCos {
			continue
		}
		candidates = append(candidates, candidate{p: p, score: p.Distance(a) + p.Distance(b)})
	}
	slices.SortFunc(candidates, func(x, y candidate) int {
		if c := cmp.Compare(x.score, y.score); c != 0 {
			return c
		}
		return x.p.Index() - y.p.Index()
	})

	for _, c := range candidates {
		if !region.Contains(c.p.Vector) || m.crossesMesh(Face{a, b, c.p}) {
			continue
		}
		p := c.p
		m.addFace(a, b, p)
		if !m.front.Connected(p, a) {
			m.front.Push(p, a)
		}
		if !m.front.Connected(b, p) {
			m.front.Push(b, p)
		}
		m.front.Connect(p, a)
		m.front.Connect(b, p)
		return nil
	}

	m.result.Stats.Open++
	return nil
}

// influenceRegion builds the region of (a, b) from its known face, scaled by
// the larger sampling uniformity degree of a and b times the mean of their
// shortest incident edges. The scale is at least |ab| and at most MaxEdge.
func (m *Mesher) influenceRegion(a, b *voxel.Point) (*Region, error) {
	pk, ok := m.front.Opposite(a, b)
	if !ok {
		return nil, fmt.Errorf("voxmesh: edge %d %d has no face", a.Index(), b.Index())
	}

	sa, la := m.front.edgeRange(a)
	sb, lb := m.front.edgeRange(b)
	if sa == 0 || sb == 0 {
		return nil, fmt.Errorf("%w: zero-length edge", ErrDegenerateRegion)
	}
	scale := max(la/sa, lb/sb) * (sa + sb) / 2
	scale = min(max(scale, a.Distance(b)), m.opts.MaxEdge)

	return NewRegion(a.Vector, b.Vector, pk.Vector, scale, m.opts.Extrusion)
}

// foldCos returns the cosine of the angle about the edge ab between the
// faces (a, b, pk) and (a, b, p).
func foldCos(a, b, pk, p r3.Vector) float64 {
	d := b.Sub(a).Normalize()
	u := pk.Sub(a)
	u = u.Sub(d.Mul(d.Dot(u)))
	v := p.Sub(a)
	v = v.Sub(d.Mul(d.Dot(v)))
	return u.Dot(v) / (u.Norm() * v.Norm())
}

func (m *Mesher) addFace(a, b, c *voxel.Point) {
	if m.front.AddFace(a, b, c) {
		m.faces = append(m.faces, Face{a, b, c})
		m.longest = max(m.longest, a.Distance(b), b.Distance(c), c.Distance(a))
	}
}

// crossesMesh reports whether t crosses a face already built. Such a face
// has every vertex within the longest edge of t's bounding box.
func (m *Mesher) crossesMesh(t Face) bool {
	lo, hi := t.bounds()
	pad := r3.Vector{X: m.longest, Y: m.longest, Z: m.longest}
	keys := m.space.VoxelsInRegion(m.space.KeyFor(lo.Sub(pad)), m.space.KeyFor(hi.Add(pad)))

	seen := make(map[faceKey]struct{})
	for p := range m.space.PointsInVoxels(keys) {
		for _, f := range m.front.FacesAround(p) {
			k := newFaceKey(f[0], f[1], f[2])
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			if t.Crosses(f) {
				return true
			}
		}
	}
	return false
}

// Reconstruct indexes points in a Space with cells of edge voxelSize, seeds
// and grows a mesh. A non-nil error means no mesh could be seeded; otherwise
// the mesh is returned even when growth was aborted.
func Reconstruct(points []*voxel.Point, voxelSize float64, setters ...Option) (*Mesh, Result, error) {
	space, err := voxel.NewSpace(voxelSize)
	if err != nil {
		return nil, Result{}, err
	}
	if err := space.AddPoints(points); err != nil {
		return nil, Result{}, err
	}

	m, err := NewMesher(space, setters...)
	if err != nil {
		return nil, Result{}, err
	}
	if err := m.Seed(); err != nil {
		return nil, Result{}, err
	}
	res := m.Grow()
	return m.Mesh(), res, nil
}
