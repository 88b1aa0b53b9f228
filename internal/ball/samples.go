package ball

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/pattern"
)

// SampleResult is the outcome of the pattern check.
type SampleResult struct {
	Passed       bool            `json:"passed"`
	Complete     bool            `json:"complete"` // Every sample point was visible and inside the image
	Brightnesses []int           `json:"brightnesses"`
	Threshold    int             `json:"threshold"`
	Contrast     float64         `json:"contrast"`
	Pattern      pattern.Pattern `json:"pattern"`
}

// checkSamplePoints reads the brightness under every sample point of the
// candidate, thresholds them into a pattern and looks it up in the table.
func (p *Perceptor) checkSamplePoints(img Image, cam Camera, c Candidate, trace *Trace) SampleResult {
	res := SampleResult{
		Complete:     true,
		Brightnesses: make([]int, 0, len(p.samplePoints)),
	}
	view := newViewFrame(c.Pose.Translation)
	for _, sp := range p.samplePoints {
		b, ok := p.sampleBrightness(img, cam, c, view, sp)
		if !ok {
			res.Complete = false
			continue
		}
		res.Brightnesses = append(res.Brightnesses, b)
	}

	if len(res.Brightnesses) == 0 {
		trace.result(false, "samplesInImage")
		return res
	}

	res.Threshold = calcThreshold(res.Brightnesses)
	contrast, ok := checkContrast(res.Brightnesses, res.Threshold, p.cfg.MinContrast)
	res.Contrast = contrast
	if !trace.leq(p.cfg.MinContrast, contrast, "minContrast") || !ok {
		return res
	}
	if !trace.result(res.Complete, "samplesInImage") {
		return res
	}

	for i, b := range res.Brightnesses {
		if b > res.Threshold {
			res.Pattern = res.Pattern.With(i)
		}
	}
	res.Passed = trace.result(p.table.Contains(res.Pattern), "pattern")
	return res
}

// sampleBrightness returns the compensated brightness under a sample point.
// It fails when the point faces away from the camera or leaves the image.
func (p *Perceptor) sampleBrightness(img Image, cam Camera, c Candidate, view viewFrame, sp r3.Vec) (int, bool) {
	normal := c.Pose.Rotate(view.toCamera(sp))
	surface := r3.Add(c.Pose.Translation, r3.Scale(p.cfg.BallRadius, normal))
	if r3.Dot(normal, surface) >= 0 {
		return 0, false
	}
	px, ok := cam.Project(surface)
	if !ok {
		return 0, false
	}
	pi := px.Round()
	if !inImage(img, pi) {
		return 0, false
	}
	// Lower points are shadowed by the ball itself.
	b := float64(img.Brightness(pi.X, pi.Y)) + p.cfg.BrightnessBonus*(sp.Y+1)/2
	return int(math.Min(255, math.Round(b))), true
}

// viewFrame is the frame of a ball in which the camera looks along +z and y
// points down as in the image. Sample points are given in this frame so the
// sampled cap faces the camera wherever the ball is in the image.
type viewFrame struct {
	x, y, z r3.Vec
}

func newViewFrame(center r3.Vec) viewFrame {
	z := r3.Unit(center)
	y := r3.Sub(r3.Vec{Y: 1}, r3.Scale(z.Y, z))
	if r3.Norm(y) < 1e-9 {
		// Straight above or below the camera.
		x := r3.Unit(r3.Sub(r3.Vec{X: 1}, r3.Scale(z.X, z)))
		return viewFrame{x: x, y: r3.Cross(z, x), z: z}
	}
	y = r3.Unit(y)
	return viewFrame{x: r3.Cross(y, z), y: y, z: z}
}

// toCamera rotates a direction from the view frame into camera coordinates.
func (f viewFrame) toCamera(v r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(v.X, f.x), r3.Scale(v.Y, f.y)), r3.Scale(v.Z, f.z))
}
