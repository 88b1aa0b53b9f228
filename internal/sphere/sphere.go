// Package sphere generates the unit-sphere point sets used for the ball
// contour mesh and the ball surface sample points.
package sphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type triangle [3]int

// mesh accumulates deduplicated vertices in creation order.
type mesh struct {
	vertices []r3.Vec
	index    map[[3]int64]int
	midpoint map[[2]int]int
}

func newMesh() *mesh {
	return &mesh{
		index:    make(map[[3]int64]int),
		midpoint: make(map[[2]int]int),
	}
}

// add returns the index of v, inserting it if no vertex within rounding
// distance exists yet.
func (m *mesh) add(v r3.Vec) int {
	v = r3.Unit(v)
	key := [3]int64{quantize(v.X), quantize(v.Y), quantize(v.Z)}
	if i, ok := m.index[key]; ok {
		return i
	}
	m.vertices = append(m.vertices, v)
	m.index[key] = len(m.vertices) - 1
	return len(m.vertices) - 1
}

// split returns the vertex halfway between a and b on the sphere.
func (m *mesh) split(a, b int) int {
	edge := [2]int{a, b}
	if a > b {
		edge = [2]int{b, a}
	}
	if i, ok := m.midpoint[edge]; ok {
		return i
	}
	i := m.add(r3.Add(m.vertices[a], m.vertices[b]))
	m.midpoint[edge] = i
	return i
}

func quantize(f float64) int64 {
	return int64(math.Round(f * 1e9))
}

// Subdivide returns the vertices of a cube whose triangulated faces were split
// n times and projected onto the unit sphere. The order is the creation order
// and is identical for every call with the same n. n <= 0 yields the eight
// normalised cube corners.
func Subdivide(n int) []r3.Vec {
	m := newMesh()
	for _, c := range [8]r3.Vec{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	} {
		m.add(c)
	}

	faces := []triangle{
		{0, 2, 1}, {0, 3, 2}, // z = -1
		{4, 5, 6}, {4, 6, 7}, // z = +1
		{0, 1, 5}, {0, 5, 4}, // y = -1
		{3, 6, 2}, {3, 7, 6}, // y = +1
		{0, 4, 7}, {0, 7, 3}, // x = -1
		{1, 2, 6}, {1, 6, 5}, // x = +1
	}

	for level := 0; level < n; level++ {
		next := make([]triangle, 0, len(faces)*4)
		for _, f := range faces {
			ab := m.split(f[0], f[1])
			bc := m.split(f[1], f[2])
			ca := m.split(f[2], f[0])
			next = append(next,
				triangle{f[0], ab, ca},
				triangle{ab, f[1], bc},
				triangle{ca, bc, f[2]},
				triangle{ab, bc, ca},
			)
		}
		faces = next
		// Midpoints are only shared within one level.
		m.midpoint = make(map[[2]int]int)
	}

	out := make([]r3.Vec, len(m.vertices))
	copy(out, m.vertices)
	return out
}

// SamplePoints returns the surface directions sampled for the ball pattern.
// They are expressed in the ball's view-aligned frame, where the camera looks
// along +z and y points down: a point is kept when it faces the camera by at
// least depthRatio (z <= -depthRatio) and is not below heightRatio
// (y <= heightRatio).
func SamplePoints(n int, depthRatio, heightRatio float64) []r3.Vec {
	var points []r3.Vec
	for _, v := range Subdivide(n) {
		if v.Z <= -depthRatio && v.Y <= heightRatio {
			points = append(points, v)
		}
	}
	return points
}
