package ball

import (
	"ball-perceptor/pkg/geometry"
)

// SurroundRatios summarises the pixels on the rings around a ball.
type SurroundRatios struct {
	Green    float64 `json:"green"`
	NonWhite float64 `json:"non_white"`
	Samples  int     `json:"samples"`
}

// countAround samples NumberOfGreenChecks pixels on a ring for every entry
// of GreenCheckRadiusRatios. Pixels outside the image are skipped and do not
// count towards total.
func (p *Perceptor) countAround(img Image, center geometry.PointInt, radius float64) (green, nonWhite, total int) {
	c := center.ToFloat()
	for _, ratio := range p.cfg.GreenCheckRadiusRatios {
		for _, pt := range geometry.GenerateCirclePoints(c.X, c.Y, radius*(1+ratio), p.cfg.NumberOfGreenChecks) {
			px := pt.Round()
			if !inImage(img, px) {
				continue
			}
			total++
			if img.IsGreen(px.X, px.Y) {
				green++
			}
			if !img.IsWhite(px.X, px.Y) {
				nonWhite++
			}
		}
	}
	return green, nonWhite, total
}

// surround returns the green and non-white ratios around the ball.
func (p *Perceptor) surround(img Image, center geometry.PointInt, radius float64) SurroundRatios {
	green, nonWhite, total := p.countAround(img, center, radius)
	if total == 0 {
		return SurroundRatios{}
	}
	return SurroundRatios{
		Green:    float64(green) / float64(total),
		NonWhite: float64(nonWhite) / float64(total),
		Samples:  total,
	}
}
