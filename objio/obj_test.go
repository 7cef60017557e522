// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package objio

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/2dChan/voxmesh"
	"github.com/2dChan/voxmesh/utils"
	"github.com/2dChan/voxmesh/voxel"
	"github.com/google/go-cmp/cmp"
)

func TestWrite(t *testing.T) {
	p := mustIndexed(t, []*voxel.Point{
		voxel.NewPoint(0, 0, 0).WithColor(255, 0, 0),
		voxel.NewPoint(1.5, 0, 0).WithNormal(0, 0, 2),
		voxel.NewPoint(0, -2, 0.25),
	})
	m := &voxmesh.Mesh{
		Points: []*voxel.Point{p[2], p[0], p[1]},
		Faces:  []voxmesh.Face{{p[0], p[1], p[2]}},
	}

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{
			"plain",
			nil,
			"v 0 0 0\nv 1.5 0 0\nv 0 -2 0.25\nf 1 2 3\n",
		},
		{
			"colors",
			[]Option{WithColors()},
			"v 0 0 0 1 0 0\nv 1.5 0 0\nv 0 -2 0.25\nf 1 2 3\n",
		},
		{
			"normals",
			[]Option{WithNormals()},
			"v 0 0 0\nv 1.5 0 0\nv 0 -2 0.25\nvn 0 0 0\nvn 0 0 1\nvn 0 0 0\nf 1//1 2//2 3//3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, m, tt.opts...); err != nil {
				t.Fatalf("Write(...) error = %v, want nil", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("Write(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrite_UnknownPoint(t *testing.T) {
	p := mustIndexed(t, utils.Tetrahedron(1))
	m := &voxmesh.Mesh{
		Points: p[:3],
		Faces:  []voxmesh.Face{{p[0], p[1], p[3]}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, m); err == nil {
		t.Errorf("Write(...) error = nil, want non-nil")
	}
}

func TestWrite_Reconstructed(t *testing.T) {
	mesh, _, err := voxmesh.Reconstruct(utils.Tetrahedron(2), 1)
	if err != nil {
		t.Fatalf("voxmesh.Reconstruct(...) error = %v, want nil", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, mesh); err != nil {
		t.Fatalf("Write(...) error = %v, want nil", err)
	}

	var vertices, faces int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			vertices++
		case strings.HasPrefix(line, "f "):
			faces++
		}
	}
	if vertices != 4 || faces != mesh.NumFaces() {
		t.Errorf("Write(...) wrote %d vertices and %d faces, want 4 and %d", vertices, faces, mesh.NumFaces())
	}
}

func TestRead(t *testing.T) {
	const src = `# scan
o cloud
v 1 2 3
v 4 5 6 255 0 127.5
v 7 8 9 1
vn 0 0 3
vn 0 1 0
vn 1 0 0
vt 0.5 0.5
f 1 2 3
`
	points, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read(...) error = %v, want nil", err)
	}

	want := []record{
		{XYZ: [3]float64{1, 2, 3}, Normal: &[3]float64{0, 0, 1}},
		{XYZ: [3]float64{4, 5, 6}, Color: &[3]float64{1, 0, 0.5}, Normal: &[3]float64{0, 1, 0}},
		{XYZ: [3]float64{7, 8, 9}, Normal: &[3]float64{1, 0, 0}},
	}
	if diff := cmp.Diff(want, records(points), approx()); diff != "" {
		t.Errorf("Read(...) mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_UnpairedNormals(t *testing.T) {
	points, err := Read(strings.NewReader("v 0 0 0\nv 1 0 0\nvn 0 0 1\n"))
	if err != nil {
		t.Fatalf("Read(...) error = %v, want nil", err)
	}
	for i, p := range points {
		if p.Normal != nil {
			t.Errorf("Read(...)[%d].Normal = %v, want nil", i, p.Normal)
		}
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"bad float", "v 0 0 0\nv 1 x 0\n", "line 2"},
		{"short vertex", "v 0 0\n", "vertex has 2 values"},
		{"short normal", "v 0 0 0\nvn 0 1\n", "normal has 2 values"},
		{"nan vertex", "v 0 0 0\nv nan 0 0\n", "line 2: non-finite"},
		{"inf normal", "v 0 0 0\nvn 0 -Inf 0\n", "line 2: non-finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Read(...) error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	mesh, _, err := voxmesh.Reconstruct(utils.GenerateSpherePoints(50, 3, 1), 1)
	if err != nil {
		t.Fatalf("voxmesh.Reconstruct(...) error = %v, want nil", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, mesh, WithNormals()); err != nil {
		t.Fatalf("Write(...) error = %v, want nil", err)
	}
	points, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read(...) error = %v, want nil", err)
	}
	if diff := cmp.Diff(records(mesh.Points), records(points), approx()); diff != "" {
		t.Errorf("Read(Write(...)) mismatch (-want +got):\n%s", diff)
	}
}

// Helpers

type record struct {
	XYZ    [3]float64
	Color  *[3]float64
	Normal *[3]float64
}

func records(points []*voxel.Point) []record {
	res := make([]record, len(points))
	for i, p := range points {
		res[i].XYZ = [3]float64{p.X, p.Y, p.Z}
		if p.Color != nil {
			res[i].Color = &[3]float64{p.Color.R, p.Color.G, p.Color.B}
		}
		if p.Normal != nil {
			res[i].Normal = &[3]float64{p.Normal.X, p.Normal.Y, p.Normal.Z}
		}
	}
	return res
}

func mustIndexed(t *testing.T, points []*voxel.Point) []*voxel.Point {
	t.Helper()
	s, err := voxel.NewSpace(1)
	if err != nil {
		t.Fatalf("voxel.NewSpace(1) error = %v, want nil", err)
	}
	if err := s.AddPoints(points); err != nil {
		t.Fatalf("s.AddPoints(...) error = %v, want nil", err)
	}
	return points
}

func approx() cmp.Option {
	return cmp.Comparer(func(x, y float64) bool {
		return math.Abs(x-y) <= 1e-9
	})
}
