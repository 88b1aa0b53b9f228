// Package ball decides which detector candidates are the ball. A candidate
// passes a fixed sequence of cheap gates (response, image radius, surrounding
// colour) and finally the pattern check, which thresholds the brightness of
// sample points on the candidate's surface and looks the resulting bit
// pattern up in a precomputed table of legal ball patterns.
package ball

import (
	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/pkg/geometry"
)

// Candidate is a hypothesised ball pose in camera coordinates with the
// detector's confidence.
type Candidate struct {
	Pose     geometry.Pose `json:"pose"`
	Response float64       `json:"response"`
}

// Status of a percept.
type Status int

const (
	StatusNotSeen Status = iota
	StatusGuessed        // Accepted without surround and pattern checks
	StatusSeen
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusGuessed:
		return "guessed"
	case StatusSeen:
		return "seen"
	default:
		return "notSeen"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Percept is the published ball observation of a frame.
type Percept struct {
	Status          Status           `json:"status"`
	Candidate       Candidate        `json:"candidate"`
	PositionInImage geometry.Point2D `json:"position_in_image"`
	RadiusInImage   float64          `json:"radius_in_image"`
	PositionOnField r3.Vec           `json:"position_on_field"` // Robot coordinates
	Distance        float64          `json:"distance"`          // Ground distance from the robot origin
}

// Image is the read-only pixel access the checks need. Callers guarantee
// coordinates are inside [0, Width) x [0, Height).
type Image interface {
	Width() int
	Height() int
	Brightness(x, y int) uint8
	IsGreen(x, y int) bool
	IsWhite(x, y int) bool
}

// Camera is the projection model of the image. Points are in camera
// coordinates (x right, y down, z forward), robot coordinates have z up.
type Camera interface {
	Project(p r3.Vec) (geometry.Point2D, bool)
	Ray(px geometry.Point2D) r3.Vec
	IntersectHorizontal(px geometry.Point2D, planeHeight float64) (float64, bool)
	SphereRadius(radius, dist float64) float64
	ToRobot(p r3.Vec) r3.Vec
	FromRobot(p r3.Vec) r3.Vec
	Height() float64
}

func inImage(img Image, p geometry.PointInt) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < img.Width() && p.Y < img.Height()
}
