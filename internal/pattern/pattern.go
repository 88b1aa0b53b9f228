// Package pattern builds, caches and queries the table of black and white
// surface patterns that some orientation of the official ball can produce.
package pattern

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/sphere"
)

// MaxBits is the number of sample points a Pattern can hold.
const MaxBits = 64

// Pattern holds one bit per sample point, bit i for point i.
// A set bit means bright, a cleared bit means dark.
type Pattern uint64

// Bit reports whether bit i is set.
func (p Pattern) Bit(i int) bool {
	return p&(1<<uint(i)) != 0
}

// With returns the pattern with bit i set.
func (p Pattern) With(i int) Pattern {
	return p | 1<<uint(i)
}

// Format renders the lowest n bits, point 0 first.
func (p Pattern) Format(n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		if p.Bit(i) {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Spec holds the parameters that determine the sample points and the
// orientation sweep. Angles are in radians.
type Spec struct {
	SampleSubdivisions int     `yaml:"sample_subdivisions"`
	SampleDepthRatio   float64 `yaml:"sample_depth_ratio"`
	SampleHeightRatio  float64 `yaml:"sample_height_ratio"`
	SampleRange        float64 `yaml:"sample_range"`
	SampleStep         float64 `yaml:"sample_step"`
}

// Points returns the sample points selected by s.
func (s Spec) Points() []r3.Vec {
	return sphere.SamplePoints(s.SampleSubdivisions, s.SampleDepthRatio, s.SampleHeightRatio)
}

// Validate checks that s can produce a table.
func (s Spec) Validate() error {
	if !(s.SampleStep > 0) || !(s.SampleRange > 0) || math.IsInf(s.SampleRange, 0) {
		return fmt.Errorf("%w: range=%v step=%v", ErrInvalidSweep, s.SampleRange, s.SampleStep)
	}
	n := len(s.Points())
	if n == 0 {
		return ErrNoPoints
	}
	if n > MaxBits {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPoints, n, MaxBits)
	}
	return nil
}

// Key returns the cache key for tables built from this spec and texture.
func (s Spec) Key(tex *Texture) Key {
	return Key{
		SampleSubdivisions: s.SampleSubdivisions,
		SampleDepthRatio:   s.SampleDepthRatio,
		SampleHeightRatio:  s.SampleHeightRatio,
		SampleRange:        s.SampleRange,
		SampleStep:         s.SampleStep,
		PointCount:         len(s.Points()),
		TextureID:          tex.ID(),
	}
}

// Key identifies the generation parameters of a table. Two tables with equal
// keys have equal membership.
type Key struct {
	SampleSubdivisions int     `json:"sample_subdivisions"`
	SampleDepthRatio   float64 `json:"sample_depth_ratio"`
	SampleHeightRatio  float64 `json:"sample_height_ratio"`
	SampleRange        float64 `json:"sample_range"`
	SampleStep         float64 `json:"sample_step"`
	PointCount         int     `json:"point_count"`
	TextureID          string  `json:"texture_id"`
}

// Spec returns the sample and sweep parameters of the key.
func (k Key) Spec() Spec {
	return Spec{
		SampleSubdivisions: k.SampleSubdivisions,
		SampleDepthRatio:   k.SampleDepthRatio,
		SampleHeightRatio:  k.SampleHeightRatio,
		SampleRange:        k.SampleRange,
		SampleStep:         k.SampleStep,
	}
}

// Table is the immutable set of valid ball patterns together with the
// sample points and key it was built with. It is safe for concurrent reads.
type Table struct {
	key      Key
	points   []r3.Vec
	patterns map[Pattern]struct{}
}

// NewTable creates a table for the key from a list of patterns. The sample
// points are regenerated from the key and must match its point count.
func NewTable(key Key, patterns []Pattern) (*Table, error) {
	points := key.Spec().Points()
	if len(points) != key.PointCount {
		return nil, fmt.Errorf("%w: key says %d points, spec yields %d", ErrKeyMismatch, key.PointCount, len(points))
	}
	if len(points) > MaxBits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPoints, len(points), MaxBits)
	}
	set := make(map[Pattern]struct{}, len(patterns))
	for _, p := range patterns {
		set[p] = struct{}{}
	}
	return &Table{key: key, points: points, patterns: set}, nil
}

// Contains reports whether p is a valid ball pattern.
func (t *Table) Contains(p Pattern) bool {
	_, ok := t.patterns[p]
	return ok
}

// Len returns the number of distinct patterns.
func (t *Table) Len() int {
	return len(t.patterns)
}

// Key returns the generation parameters.
func (t *Table) Key() Key {
	return t.key
}

// Points returns a copy of the sample points, in bit order.
func (t *Table) Points() []r3.Vec {
	out := make([]r3.Vec, len(t.points))
	copy(out, t.points)
	return out
}

// Patterns returns all patterns in ascending order.
func (t *Table) Patterns() []Pattern {
	out := make([]Pattern, 0, len(t.patterns))
	for p := range t.patterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
