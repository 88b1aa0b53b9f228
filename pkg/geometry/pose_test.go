package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVecNear(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestPose_ZeroValueIsIdentity(t *testing.T) {
	var p Pose
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	assertVecNear(t, v, p.Transform(v))
}

func TestEulerRotation_AppliesXFirst(t *testing.T) {
	// Rx(90°) maps y to z, then Rz(90°) leaves z alone.
	rot := EulerRotation(math.Pi/2, 0, math.Pi/2)
	got := NewPose(rot, r3.Vec{}).Transform(UnitY)
	assertVecNear(t, UnitZ, got)

	// Rx(90°) leaves x alone, then Rz(90°) maps x to y.
	got = NewPose(rot, r3.Vec{}).Transform(UnitX)
	assertVecNear(t, UnitY, got)
}

func TestPose_InverseRoundTrip(t *testing.T) {
	p := NewPose(EulerRotation(0.3, -0.7, 1.1), r3.Vec{X: 10, Y: -4, Z: 2})
	v := r3.Vec{X: -1.5, Y: 0.25, Z: 8}
	assertVecNear(t, v, p.Inverse().Transform(p.Transform(v)))
}

func TestRotationFromVector(t *testing.T) {
	rot := RotationFromVector(r3.Vec{Z: math.Pi})
	assertVecNear(t, r3.Vec{X: -1}, NewPose(rot, r3.Vec{}).Transform(UnitX))
	assertVecNear(t, UnitX, NewPose(RotationFromVector(r3.Vec{}), r3.Vec{}).Transform(UnitX))
}

func TestGenerateCirclePoints(t *testing.T) {
	pts := GenerateCirclePoints(10, 20, 5, 4)
	if assert.Len(t, pts, 4) {
		assert.InDelta(t, 15, pts[0].X, 1e-9)
		assert.InDelta(t, 20, pts[0].Y, 1e-9)
		assert.InDelta(t, 10, pts[1].X, 1e-9)
		assert.InDelta(t, 25, pts[1].Y, 1e-9)
	}
	assert.Nil(t, GenerateCirclePoints(0, 0, 1, 0))
}

func TestPoint2D_Round(t *testing.T) {
	assert.Equal(t, PointInt{X: 3, Y: -2}, Point2D{X: 2.5, Y: -2.4}.Round())
}
