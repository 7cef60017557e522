// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides deterministic synthetic point clouds for tests, examples and benchmarks.

package utils

import (
	"math"
	"math/rand"

	"github.com/2dChan/voxmesh/voxel"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// GenerateSpherePoints generates cnt random points on a sphere of the given
// radius centered at the origin. Each point carries its outward normal.
// The seed parameter ensures reproducibility.
func GenerateSpherePoints(cnt int, radius float64, seed int64) []*voxel.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]*voxel.Point, cnt)

	for i := range cnt {
		sp := s2.PointFromLatLng(s2.LatLng{
			Lat: s1.Angle(math.Asin(random.Float64()*2 - 1)),
			Lng: s1.Angle((random.Float64()*2 - 1) * math.Pi),
		})
		points[i] = voxel.PointFromVector(sp.Mul(radius)).WithNormal(sp.X, sp.Y, sp.Z)
	}

	return points
}

// GenerateGridPoints generates an nx by ny grid of points with the given
// spacing in the z = 0 plane, starting at the origin. Odd rows are shifted
// by half a spacing so neighboring rows form near-equilateral triangles.
func GenerateGridPoints(nx, ny int, spacing float64) []*voxel.Point {
	points := make([]*voxel.Point, 0, nx*ny)
	rowStep := spacing * math.Sqrt(3) / 2
	for j := range ny {
		shift := 0.0
		if j%2 == 1 {
			shift = spacing / 2
		}
		for i := range nx {
			points = append(points, voxel.NewPoint(float64(i)*spacing+shift, float64(j)*rowStep, 0).WithNormal(0, 0, 1))
		}
	}
	return points
}

// GenerateCubePoints generates cnt random points uniformly in the cube
// [-half, half]^3. The seed parameter ensures reproducibility.
func GenerateCubePoints(cnt int, half float64, seed int64) []*voxel.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]*voxel.Point, cnt)
	for i := range cnt {
		points[i] = voxel.NewPoint(
			(random.Float64()*2-1)*half,
			(random.Float64()*2-1)*half,
			(random.Float64()*2-1)*half,
		)
	}
	return points
}

// Tetrahedron returns the vertices of a regular tetrahedron centered at the
// origin with the given edge length.
func Tetrahedron(edge float64) []*voxel.Point {
	h := edge / (2 * math.Sqrt2)
	return []*voxel.Point{
		voxel.NewPoint(h, h, h),
		voxel.NewPoint(h, -h, -h),
		voxel.NewPoint(-h, h, -h),
		voxel.NewPoint(-h, -h, h),
	}
}
