package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/ball"
	"ball-perceptor/pkg/geometry"
)

// candidateInput is one entry of a candidates file. Either Position (camera
// coordinates) or Field (ground position in robot coordinates) is given.
type candidateInput struct {
	Position []float64 `json:"position,omitempty"`
	Field    []float64 `json:"field,omitempty"`
	Rotation []float64 `json:"rotation,omitempty"` // Rotation vector in radians
	Response float64   `json:"response"`
}

// fieldToCamera maps robot coordinates into camera coordinates.
type fieldToCamera interface {
	FromRobot(p r3.Vec) r3.Vec
}

func readCandidates(path string, cam fieldToCamera, ballRadius float64) ([]ball.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return parseCandidates(data, cam, ballRadius)
}

func parseCandidates(data []byte, cam fieldToCamera, ballRadius float64) ([]ball.Candidate, error) {
	var inputs []candidateInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse candidates: %w", err)
	}

	candidates := make([]ball.Candidate, 0, len(inputs))
	for i, in := range inputs {
		var pos r3.Vec
		switch {
		case len(in.Position) == 3 && in.Field == nil:
			pos = r3.Vec{X: in.Position[0], Y: in.Position[1], Z: in.Position[2]}
		case len(in.Field) == 2 && in.Position == nil:
			pos = cam.FromRobot(r3.Vec{X: in.Field[0], Y: in.Field[1], Z: ballRadius})
		default:
			return nil, fmt.Errorf("candidate %d: need either a 3-element position or a 2-element field position", i)
		}

		rot := geometry.IdentityRotation()
		if in.Rotation != nil {
			if len(in.Rotation) != 3 {
				return nil, fmt.Errorf("candidate %d: rotation must have 3 elements", i)
			}
			rot = geometry.RotationFromVector(r3.Vec{X: in.Rotation[0], Y: in.Rotation[1], Z: in.Rotation[2]})
		}
		candidates = append(candidates, ball.Candidate{
			Pose:     geometry.NewPose(rot, pos),
			Response: in.Response,
		})
	}
	return candidates, nil
}
