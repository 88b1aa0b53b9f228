package ball

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SearchSpec is the search window handed to the candidate detector for one
// frame.
type SearchSpec struct {
	Valid            bool    `json:"valid"` // Camera height is covered by the detector's contour table
	CameraHeight     float64 `json:"camera_height"`
	MaxDistance      float64 `json:"max_distance"`
	MinRadius        float64 `json:"min_radius"` // Image radius of the ball at MaxDistance
	Spacing          float64 `json:"spacing"`
	RefineIterations int     `json:"refine_iterations"`
	RefineStepSize   float64 `json:"refine_step_size"`
	Start            *r3.Vec `json:"start,omitempty"` // Predicted ball centre in camera coordinates
}

// UpdateSearchSpace computes the search window for the current camera.
// prediction is the predicted ball centre in robot coordinates, or nil.
func (p *Perceptor) UpdateSearchSpace(cam Camera, prediction *r3.Vec) SearchSpec {
	s := p.cfg.Search
	height := cam.Height()
	spec := SearchSpec{
		Valid:            height >= s.MinTableHeight && height <= s.MaxTableHeight,
		CameraHeight:     height,
		MaxDistance:      s.MaxTableRadius,
		Spacing:          s.Spacing,
		RefineIterations: s.RefineIterations,
		RefineStepSize:   s.RefineStepSize,
	}
	if !spec.Valid {
		return spec
	}

	far := math.Hypot(s.MaxTableRadius, height-p.cfg.BallRadius)
	spec.MinRadius = cam.SphereRadius(p.cfg.BallRadius, far)

	if s.UsePrediction && prediction != nil && math.Hypot(prediction.X, prediction.Y) <= s.MaxTableRadius {
		start := cam.FromRobot(r3.Vec{X: prediction.X, Y: prediction.Y, Z: p.cfg.BallRadius})
		if start.Z > 0 {
			spec.Start = &start
		}
	}
	return spec
}
