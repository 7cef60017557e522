// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voxel

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

func TestPoint_WithColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		want    Color
	}{
		{"normalized", 0.1, 0.5, 1, Color{0.1, 0.5, 1}},
		{"byte scale", 255, 0, 51, Color{1, 0, 0.2}},
		{"one channel above one", 2, 0.5, 0, Color{2.0 / 255, 0.5 / 255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPoint(0, 0, 0).WithColor(tt.r, tt.g, tt.b)
			if p.Color == nil {
				t.Fatalf("WithColor(%v, %v, %v) Color = nil, want non-nil", tt.r, tt.g, tt.b)
			}
			if diff := cmp.Diff(tt.want, *p.Color, approx()); diff != "" {
				t.Errorf("WithColor(%v, %v, %v) mismatch (-want +got):\n%s", tt.r, tt.g, tt.b, diff)
			}
		})
	}
}

func TestPoint_WithNormal(t *testing.T) {
	p := NewPoint(1, 2, 3).WithNormal(0, 3, 4)
	if p.Normal == nil {
		t.Fatalf("WithNormal(0, 3, 4) Normal = nil, want non-nil")
	}
	want := r3.Vector{X: 0, Y: 0.6, Z: 0.8}
	if diff := cmp.Diff(want, *p.Normal, approx()); diff != "" {
		t.Errorf("WithNormal(0, 3, 4) mismatch (-want +got):\n%s", diff)
	}

	p.WithNormal(0, 0, 0)
	if p.Normal != nil {
		t.Errorf("WithNormal(0, 0, 0) Normal = %v, want nil", *p.Normal)
	}
}

func TestPoint_Equal(t *testing.T) {
	s := mustNewSpace(t, 1)
	a, b := NewPoint(1, 1, 1), NewPoint(1, 1, 1)
	if !a.Equal(b) {
		t.Errorf("unindexed a.Equal(b) = false, want true")
	}
	if err := s.AddPoints([]*Point{a, b}); err != nil {
		t.Fatalf("s.AddPoints(...) error = %v, want nil", err)
	}
	if a.Equal(b) {
		t.Errorf("indexed a.Equal(b) = true, want false")
	}
	if !a.Equal(a) {
		t.Errorf("a.Equal(a) = false, want true")
	}
	if a.Equal(nil) {
		t.Errorf("a.Equal(nil) = true, want false")
	}
}

func TestPoint_Distance(t *testing.T) {
	a, b := NewPoint(0, 0, 0), NewPoint(1, 2, 2)
	if got := a.Distance(b); math.Abs(got-3) > defaultEps {
		t.Errorf("a.Distance(b) = %v, want 3", got)
	}
}

// Helpers

func approx() cmp.Option {
	return cmp.Comparer(func(x, y float64) bool {
		return math.Abs(x-y) <= 1e-9
	})
}
