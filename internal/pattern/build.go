package pattern

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/pkg/geometry"
)

// Angles returns the sweep -rng, -rng+step, ... up to but excluding rng.
func Angles(rng, step float64) []float64 {
	if !(step > 0) || !(rng > 0) {
		return nil
	}
	n := int(math.Ceil(2*rng/step - 1e-9))
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = -rng + float64(i)*step
	}
	return angles
}

// PatternFor returns the pattern the texture shows at the sample points
// after rotating the ball by Rz(z)·Ry(y)·Rx(x).
func PatternFor(tex *Texture, points []r3.Vec, x, y, z float64) Pattern {
	rot := geometry.NewPose(geometry.EulerRotation(x, y, z), r3.Vec{})
	var p Pattern
	for i, pt := range points {
		if tex.Brightness(rot.Rotate(pt)) > FixedSplit {
			p = p.With(i)
		}
	}
	return p
}

// Build renders every pattern of the sweep described by spec. Each rotation
// around x is handled by its own goroutine; the per-goroutine sets are merged
// at the end, so the result does not depend on scheduling.
func Build(ctx context.Context, tex *Texture, spec Spec, logger zerolog.Logger) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	points := spec.Points()
	angles := Angles(spec.SampleRange, spec.SampleStep)
	key := spec.Key(tex)

	logger.Info().
		Int("points", len(points)).
		Int("steps", len(angles)).
		Int("rotations", len(angles)*len(angles)*len(angles)).
		Msg("building ball pattern table")

	partial := make([]map[Pattern]struct{}, len(angles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, x := range angles {
		i, x := i, x
		g.Go(func() error {
			set := make(map[Pattern]struct{})
			for _, y := range angles {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, z := range angles {
					set[PatternFor(tex, points, x, y, z)] = struct{}{}
				}
			}
			partial[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pattern table build aborted: %w", err)
	}

	var all []Pattern
	for _, set := range partial {
		for p := range set {
			all = append(all, p)
		}
	}
	table, err := NewTable(key, all)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("patterns", table.Len()).Msg("ball pattern table built")
	return table, nil
}
