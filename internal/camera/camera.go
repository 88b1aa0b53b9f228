// Package camera provides the pinhole camera geometry the ball perceptor
// projects candidates with.
//
// Camera coordinates follow the OpenCV convention: x right, y down, z forward.
// Robot coordinates have x forward, y left and z up with the ground at z = 0.
package camera

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/pkg/geometry"
)

// ErrInvalidIntrinsics is returned when focal lengths or image size are not positive.
var ErrInvalidIntrinsics = errors.New("invalid camera intrinsics")

// Intrinsics are the pinhole parameters of a camera, in pixels.
type Intrinsics struct {
	Fx     float64 `yaml:"fx" json:"fx"`
	Fy     float64 `yaml:"fy" json:"fy"`
	Cx     float64 `yaml:"cx" json:"cx"`
	Cy     float64 `yaml:"cy" json:"cy"`
	Width  int     `yaml:"width" json:"width"`
	Height int     `yaml:"height" json:"height"`
}

// Validate checks the intrinsics.
func (in Intrinsics) Validate() error {
	if in.Fx <= 0 || in.Fy <= 0 || in.Width <= 0 || in.Height <= 0 {
		return ErrInvalidIntrinsics
	}
	return nil
}

// Pinhole is a calibrated camera mounted on the robot.
type Pinhole struct {
	Intrinsics
	// CameraToRobot maps camera coordinates into robot coordinates.
	CameraToRobot geometry.Pose
}

// NewPinhole creates a camera from intrinsics and its pose on the robot.
func NewPinhole(in Intrinsics, cameraToRobot geometry.Pose) (*Pinhole, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &Pinhole{Intrinsics: in, CameraToRobot: cameraToRobot}, nil
}

// LookingAt returns the pose of a camera at the given height above the
// robot origin, looking forward along robot x and tilted down by tilt radians.
func LookingAt(height, tilt float64) geometry.Pose {
	// Base orientation: camera z -> robot x, camera x -> robot -y, camera y -> robot -z.
	base := geometry.EulerRotation(-math.Pi/2, 0, -math.Pi/2)
	down := r3.NewRotation(tilt, geometry.UnitY)
	return geometry.NewPose(geometry.ComposeRotations(down, base), r3.Vec{Z: height})
}

// Project maps a point in camera coordinates to a pixel. It fails for points
// on or behind the image plane.
func (c *Pinhole) Project(p r3.Vec) (geometry.Point2D, bool) {
	if p.Z <= 1e-9 {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{
		X: c.Fx*p.X/p.Z + c.Cx,
		Y: c.Fy*p.Y/p.Z + c.Cy,
	}, true
}

// Ray returns the unit viewing direction through a pixel, in camera coordinates.
func (c *Pinhole) Ray(px geometry.Point2D) r3.Vec {
	return r3.Unit(r3.Vec{X: (px.X - c.Cx) / c.Fx, Y: (px.Y - c.Cy) / c.Fy, Z: 1})
}

// ToRobot maps a point from camera into robot coordinates.
func (c *Pinhole) ToRobot(p r3.Vec) r3.Vec {
	return c.CameraToRobot.Transform(p)
}

// FromRobot maps a point from robot into camera coordinates.
func (c *Pinhole) FromRobot(p r3.Vec) r3.Vec {
	return c.CameraToRobot.Inverse().Transform(p)
}

// Height returns the height of the optical centre above the ground.
func (c *Pinhole) Height() float64 {
	return c.CameraToRobot.Translation.Z
}

// FocalLength returns the mean focal length.
func (c *Pinhole) FocalLength() float64 {
	return (c.Fx + c.Fy) / 2
}

// IntersectHorizontal intersects the viewing ray through px with the
// horizontal plane z = planeHeight in robot coordinates. It returns the
// distance along the ray from the optical centre. The intersection must lie
// in front of the camera.
func (c *Pinhole) IntersectHorizontal(px geometry.Point2D, planeHeight float64) (float64, bool) {
	dir := c.CameraToRobot.Rotate(c.Ray(px))
	if math.Abs(dir.Z) < 1e-9 {
		return 0, false
	}
	s := (planeHeight - c.Height()) / dir.Z
	if s <= 0 {
		return 0, false
	}
	return s, true
}

// SphereRadius returns the radius in pixels of a sphere of the given radius
// whose centre is dist away from the optical centre.
func (c *Pinhole) SphereRadius(radius, dist float64) float64 {
	if dist <= radius {
		return math.Inf(1)
	}
	return c.FocalLength() * radius / math.Sqrt(dist*dist-radius*radius)
}
