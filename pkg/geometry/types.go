// Package geometry provides the image-plane and rigid-body types shared by the
// ball perceptor packages.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates (pixels).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Round returns the nearest pixel.
func (p Point2D) Round() PointInt {
	return PointInt{X: int(math.Floor(p.X + 0.5)), Y: int(math.Floor(p.Y + 0.5))}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// GenerateCirclePoints generates n evenly-spaced points around a circle,
// starting at angle 0 and proceeding counter-clockwise in image coordinates.
func GenerateCirclePoints(centerX, centerY, radius float64, n int) []Point2D {
	if n <= 0 {
		return nil
	}
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = Point2D{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return points
}
