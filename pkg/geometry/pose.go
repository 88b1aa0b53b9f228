package geometry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// UnitX is the x axis.
	UnitX = r3.Vec{X: 1}
	// UnitY is the y axis.
	UnitY = r3.Vec{Y: 1}
	// UnitZ is the z axis.
	UnitZ = r3.Vec{Z: 1}
)

// Pose is a rigid transform: a rotation followed by a translation.
// The zero value is the identity.
type Pose struct {
	Rotation    r3.Rotation
	Translation r3.Vec
}

// IdentityRotation returns the rotation that leaves every vector unchanged.
func IdentityRotation() r3.Rotation {
	return r3.Rotation{Real: 1}
}

// NewPose creates a pose from a rotation and a translation.
func NewPose(rot r3.Rotation, translation r3.Vec) Pose {
	return Pose{Rotation: rot, Translation: translation}
}

// NewPoseFromPoint creates a pose with identity rotation at the given point.
func NewPoseFromPoint(p r3.Vec) Pose {
	return Pose{Rotation: IdentityRotation(), Translation: p}
}

// EulerRotation returns Rz(z)·Ry(y)·Rx(x), i.e. the rotation around x is
// applied first.
func EulerRotation(x, y, z float64) r3.Rotation {
	rx := r3.NewRotation(x, UnitX)
	ry := r3.NewRotation(y, UnitY)
	rz := r3.NewRotation(z, UnitZ)
	return ComposeRotations(rz, ComposeRotations(ry, rx))
}

// RotationFromVector converts a rotation vector (axis scaled by angle in
// radians) into a rotation.
func RotationFromVector(v r3.Vec) r3.Rotation {
	angle := r3.Norm(v)
	if angle < 1e-12 {
		return IdentityRotation()
	}
	return r3.NewRotation(angle, v)
}

// ComposeRotations returns the rotation that applies b first, then a.
func ComposeRotations(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(normalized(a)), quat.Number(normalized(b))))
}

// Rotate applies only the rotational part of the pose.
func (p Pose) Rotate(v r3.Vec) r3.Vec {
	return normalized(p.Rotation).Rotate(v)
}

// Transform maps v from the pose's local frame into the parent frame.
func (p Pose) Transform(v r3.Vec) r3.Vec {
	return r3.Add(p.Rotate(v), p.Translation)
}

// Inverse returns the pose mapping parent coordinates back into the local frame.
func (p Pose) Inverse() Pose {
	inv := r3.Rotation(quat.Conj(quat.Number(normalized(p.Rotation))))
	return Pose{
		Rotation:    inv,
		Translation: r3.Scale(-1, inv.Rotate(p.Translation)),
	}
}

// normalized maps the zero-value rotation to identity and rescales drifted
// quaternions back to unit length.
func normalized(r r3.Rotation) r3.Rotation {
	q := quat.Number(r)
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation()
	}
	if math.Abs(n-1) > 1e-12 {
		q = quat.Scale(1/n, q)
	}
	return r3.Rotation(q)
}
