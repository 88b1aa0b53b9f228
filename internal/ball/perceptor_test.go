package ball

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/camera"
	"ball-perceptor/internal/pattern"
	"ball-perceptor/pkg/geometry"
)

// testImage is a synthetic image that counts pixel reads.
type testImage struct {
	w, h       int
	brightness func(x, y int) uint8
	green      func(x, y int) bool
	white      func(x, y int) bool
	reads      int
}

func (im *testImage) Width() int  { return im.w }
func (im *testImage) Height() int { return im.h }

func (im *testImage) Brightness(x, y int) uint8 {
	im.reads++
	return im.brightness(x, y)
}

func (im *testImage) IsGreen(x, y int) bool {
	im.reads++
	return im.green(x, y)
}

func (im *testImage) IsWhite(x, y int) bool {
	im.reads++
	return im.white(x, y)
}

// ballImage is split into a dark left and a bright right part at column
// 314, just left of the ball centre, on a green field.
func ballImage() *testImage {
	return &testImage{
		w: 640, h: 480,
		brightness: func(x, y int) uint8 {
			if x < 314 {
				return 30
			}
			return 220
		},
		green: func(x, y int) bool { return true },
		white: func(x, y int) bool { return false },
	}
}

func uniformImage(b uint8, green bool) *testImage {
	return &testImage{
		w: 640, h: 480,
		brightness: func(x, y int) uint8 { return b },
		green:      func(x, y int) bool { return green },
		white:      func(x, y int) bool { return false },
	}
}

// testSpec keeps the sample set at 9 points.
func testSpec() pattern.Spec {
	return pattern.Spec{
		SampleSubdivisions: 1,
		SampleDepthRatio:   0.3,
		SampleHeightRatio:  1.0,
		SampleRange:        math.Pi / 2,
		SampleStep:         math.Pi / 4,
	}
}

func testConfig() Config {
	cfg := DefaultConfig().WithPattern(testSpec())
	cfg.BrightnessBonus = 0
	return cfg
}

// testCamera sits 500 mm high and looks straight at a ball resting on the
// ground 1000 mm ahead.
func testCamera(t *testing.T) *camera.Pinhole {
	t.Helper()
	in := camera.Intrinsics{Fx: 500, Fy: 500, Cx: 320, Cy: 240, Width: 640, Height: 480}
	cam, err := camera.NewPinhole(in, camera.LookingAt(500, math.Atan2(450, 1000)))
	require.NoError(t, err)
	return cam
}

func groundBall(cam *camera.Pinhole, response float64) Candidate {
	return Candidate{
		Pose:     geometry.NewPoseFromPoint(cam.FromRobot(r3.Vec{X: 1000, Z: 50})),
		Response: response,
	}
}

// splitPattern is the pattern ballImage produces: points on the right half
// of the ball are bright.
func splitPattern(points []r3.Vec) pattern.Pattern {
	var p pattern.Pattern
	for i, pt := range points {
		if pt.X > -1e-9 {
			p = p.With(i)
		}
	}
	return p
}

func newTestPerceptor(t *testing.T, cfg Config, patterns ...pattern.Pattern) *Perceptor {
	t.Helper()
	table, err := pattern.NewTable(cfg.Pattern.Key(pattern.RenderTexture()), patterns)
	require.NoError(t, err)
	p, err := NewPerceptor(cfg, table, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func splitPerceptor(t *testing.T, cfg Config) *Perceptor {
	t.Helper()
	return newTestPerceptor(t, cfg, splitPattern(cfg.Pattern.Points()))
}

func TestNewPerceptor_Errors(t *testing.T) {
	cfg := testConfig()

	_, err := NewPerceptor(cfg, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNilTable)

	table, err := pattern.NewTable(DefaultConfig().Pattern.Key(pattern.RenderTexture()), nil)
	require.NoError(t, err)
	_, err = NewPerceptor(cfg, table, zerolog.Nop())
	assert.ErrorIs(t, err, ErrTableMismatch)

	bad := cfg
	bad.BallRadius = 0
	_, err = NewPerceptor(bad, table, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCheck_LowResponseRejected(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())

	v := p.Check(ballImage(), cam, groundBall(cam, 0.1), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateResponse, v.Gate)
}

func TestCheck_FastAcceptReadsNoPixels(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	img := ballImage()

	v := p.Check(img, cam, groundBall(cam, 0.9), nil)
	assert.True(t, v.Accepted)
	assert.Equal(t, StatusSeen, v.Status)
	assert.Equal(t, GateFastAccept, v.Gate)
	assert.Zero(t, img.reads)
}

func TestCheck_SkipMostChecksGuesses(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig().WithSkipMostChecks(true))
	img := uniformImage(128, false)

	v := p.Check(img, cam, groundBall(cam, 0.4), nil)
	assert.True(t, v.Accepted)
	assert.Equal(t, StatusGuessed, v.Status)
	assert.Zero(t, img.reads)
}

func TestCheck_RadiusAgreesOnGround(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())

	v := p.Check(ballImage(), cam, groundBall(cam, 0.9), nil)
	require.True(t, v.Accepted)
	assert.InDelta(t, 320, v.Center.X, 1e-6)
	assert.InDelta(t, 240, v.Center.Y, 1e-6)
	assert.InDelta(t, v.ExpectedRadius, v.Radius, 1e-6)
	assert.InDelta(t, 1000, v.Distance, 1e-6)
	// The mesh silhouette is close to the analytic sphere radius.
	analytic := cam.SphereRadius(50, math.Hypot(1000, 450))
	assert.InDelta(t, analytic, v.Radius, analytic*0.05)
}

func TestCheck_RadiusDeviationRejectsBeforeFastAccept(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	c := groundBall(cam, 0.95)
	c.Pose.Translation = r3.Scale(0.5, c.Pose.Translation)

	v := p.Check(ballImage(), cam, c, nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateRadius, v.Gate)
	assert.Greater(t, v.Radius, 1.5*v.ExpectedRadius)
}

func TestCheck_AboveHorizonRejected(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	c := Candidate{Pose: geometry.NewPoseFromPoint(r3.Vec{Y: -800, Z: 1000}), Response: 0.95}

	v := p.Check(ballImage(), cam, c, nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateRadius, v.Gate)
}

func TestCheck_BehindCameraRejected(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	c := Candidate{Pose: geometry.NewPoseFromPoint(r3.Vec{Z: -1000}), Response: 0.95}

	v := p.Check(ballImage(), cam, c, nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateRadius, v.Gate)
}

func TestCheck_GreenSurroundAndPatternAccept(t *testing.T) {
	cam := testCamera(t)
	cfg := testConfig()
	p := splitPerceptor(t, cfg)

	v := p.Check(ballImage(), cam, groundBall(cam, 0.6), nil)
	require.True(t, v.Accepted)
	assert.Equal(t, StatusSeen, v.Status)
	assert.Equal(t, GatePattern, v.Gate)
	assert.Equal(t, 1.0, v.Surround.Green)
	assert.Equal(t, len(cfg.GreenCheckRadiusRatios)*cfg.NumberOfGreenChecks, v.Surround.Samples)

	assert.True(t, v.Samples.Complete)
	assert.Equal(t, splitPattern(cfg.Pattern.Points()), v.Samples.Pattern)
	assert.Equal(t, 125, v.Samples.Threshold)
	assert.InDelta(t, 190, v.Samples.Contrast, 1e-9)
}

func TestCheck_SurroundRejected(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	img := ballImage()
	img.green = func(x, y int) bool { return false }

	v := p.Check(img, cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateSurround, v.Gate)
	assert.Zero(t, v.Surround.Green)
}

func TestCheck_RelaxedSurroundWithinDistance(t *testing.T) {
	cam := testCamera(t)
	cfg := testConfig()
	cfg.MinAroundDistance = 500
	p := splitPerceptor(t, cfg)
	img := ballImage()
	img.green = func(x, y int) bool { return false }

	v := p.Check(img, cam, groundBall(cam, 0.6), nil)
	assert.True(t, v.Accepted)
	assert.Equal(t, GatePattern, v.Gate)

	// Response below MinResponseWithinGreen.
	v = p.Check(img, cam, groundBall(cam, 0.4), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateSurround, v.Gate)

	img.white = func(x, y int) bool { return true }
	v = p.Check(img, cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateSurround, v.Gate)

	// The ball lies 1000 mm away, beyond the window.
	img.white = func(x, y int) bool { return false }
	near := cfg
	near.MaxAroundDistance = 900
	v = splitPerceptor(t, near).Check(img, cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GateSurround, v.Gate)
}

func TestCheck_UnknownPatternRejected(t *testing.T) {
	cam := testCamera(t)
	cfg := testConfig()
	p := newTestPerceptor(t, cfg, splitPattern(cfg.Pattern.Points())^1)

	v := p.Check(ballImage(), cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GatePattern, v.Gate)
	assert.True(t, v.Samples.Complete)
}

func TestCheck_UniformBallFailsContrast(t *testing.T) {
	cam := testCamera(t)
	p := newTestPerceptor(t, testConfig(), 0, pattern.Pattern(1<<9-1))

	v := p.Check(uniformImage(128, true), cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GatePattern, v.Gate)
	assert.Zero(t, v.Samples.Contrast)
	assert.Zero(t, v.Samples.Pattern)
}

func TestCheck_SamplesOutsideImageRejected(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	img := ballImage()
	img.w = 322 // cuts off the right half of the ball

	v := p.Check(img, cam, groundBall(cam, 0.6), nil)
	assert.False(t, v.Accepted)
	assert.Equal(t, GatePattern, v.Gate)
	assert.False(t, v.Samples.Complete)
}

func TestCheck_TraceRecordsGates(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	trace := NewTrace()

	v := p.Check(ballImage(), cam, groundBall(cam, 0.6), trace)
	require.True(t, v.Accepted)
	require.NotEmpty(t, trace.Entries)
	assert.Equal(t, "minResponse", trace.Entries[0].Check)
	assert.True(t, trace.Entries[0].Passed)
	last := trace.Entries[len(trace.Entries)-1]
	assert.Equal(t, "pattern", last.Check)
	assert.True(t, last.Passed)
	assert.Contains(t, trace.String(), "minAroundGreenRatio")
}

func TestCheck_DoesNotMutateCandidate(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())
	c := groundBall(cam, 0.6)
	before := c

	p.Check(ballImage(), cam, c, nil)
	assert.Equal(t, before, c)
}

func TestPerceive_HighestResponseWins(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())

	candidates := []Candidate{groundBall(cam, 0.85), groundBall(cam, 0.9)}
	percept := p.Perceive(ballImage(), cam, candidates, nil)
	assert.Equal(t, StatusSeen, percept.Status)
	assert.Equal(t, 0.9, percept.Candidate.Response)
	assert.InDelta(t, 1000, percept.PositionOnField.X, 1e-6)
	assert.InDelta(t, 0, percept.PositionOnField.Y, 1e-6)
	assert.InDelta(t, 50, percept.PositionOnField.Z, 1e-6)
	assert.InDelta(t, 1000, percept.Distance, 1e-6)
	assert.Greater(t, percept.RadiusInImage, 0.0)
}

func TestPerceive_FallsBackToNextCandidate(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())

	near := groundBall(cam, 0.95)
	near.Pose.Translation = r3.Scale(0.5, near.Pose.Translation)
	candidates := []Candidate{groundBall(cam, 0.6), near, groundBall(cam, 0.1)}

	trace := NewTrace()
	percept := p.Perceive(ballImage(), cam, candidates, trace)
	assert.Equal(t, StatusSeen, percept.Status)
	assert.Equal(t, 0.6, percept.Candidate.Response)
	// The near candidate is checked first.
	assert.Equal(t, 1, trace.Entries[0].Candidate)
}

func TestPerceive_DebugLogWithoutTrace(t *testing.T) {
	cam := testCamera(t)
	cfg := testConfig()
	table, err := pattern.NewTable(cfg.Pattern.Key(pattern.RenderTexture()), nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	p, err := NewPerceptor(cfg, table, zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, err)

	percept := p.Perceive(ballImage(), cam, []Candidate{groundBall(cam, 0.6)}, nil)
	assert.Equal(t, StatusNotSeen, percept.Status)
	assert.Contains(t, buf.String(), `"message":"ball candidate checked"`)
	assert.Contains(t, buf.String(), `"pattern":"`+splitPattern(cfg.Pattern.Points()).Format(9)+`"`)

	buf.Reset()
	p, err = NewPerceptor(cfg, table, zerolog.New(&buf).Level(zerolog.InfoLevel))
	require.NoError(t, err)
	p.Perceive(ballImage(), cam, []Candidate{groundBall(cam, 0.6)}, NewTrace())
	assert.Empty(t, buf.String())
}

func TestPerceive_NothingAccepted(t *testing.T) {
	cam := testCamera(t)
	p := splitPerceptor(t, testConfig())

	assert.Equal(t, StatusNotSeen, p.Perceive(ballImage(), cam, nil, nil).Status)
	percept := p.Perceive(ballImage(), cam, []Candidate{groundBall(cam, 0.1)}, nil)
	assert.Equal(t, Percept{Status: StatusNotSeen}, percept)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "notSeen", StatusNotSeen.String())
	assert.Equal(t, "guessed", StatusGuessed.String())
	assert.Equal(t, "seen", StatusSeen.String())
	assert.Equal(t, "surround", GateSurround.String())
}

func TestCheck_OutlineContainsSamples(t *testing.T) {
	cam := testCamera(t)
	cfg := testConfig()
	p := splitPerceptor(t, cfg)
	c := groundBall(cam, 0.6)

	v := p.Check(ballImage(), cam, c, nil)
	require.True(t, v.Accepted)
	require.GreaterOrEqual(t, len(v.Outline), 3)
	view := newViewFrame(c.Pose.Translation)
	for _, sp := range cfg.Pattern.Points() {
		px, ok := cam.Project(r3.Add(c.Pose.Translation, r3.Scale(cfg.BallRadius, view.toCamera(sp))))
		require.True(t, ok)
		assert.LessOrEqual(t, v.Center.Distance(px), v.Radius)
	}
}

func TestCheck_OffAxisBallSamplesComplete(t *testing.T) {
	cam := testCamera(t)
	cfg := DefaultConfig()
	empty := newTestPerceptor(t, cfg)

	for _, lateral := range []float64{300, 400, 500} {
		c := Candidate{
			Pose:     geometry.NewPoseFromPoint(cam.FromRobot(r3.Vec{X: 1000, Y: -lateral, Z: 50})),
			Response: 0.6,
		}
		v := empty.Check(uniformImage(128, true), cam, c, nil)
		assert.Equal(t, GatePattern, v.Gate, "lateral %v", lateral)
		assert.Greater(t, v.Center.X, 400.0, "lateral %v", lateral)
		assert.True(t, v.Samples.Complete, "lateral %v", lateral)
		assert.Len(t, v.Samples.Brightnesses, len(cfg.Pattern.Points()), "lateral %v", lateral)
	}
}

func TestCheck_OffAxisBallAccepted(t *testing.T) {
	cam := testCamera(t)
	cfg := DefaultConfig()
	c := Candidate{
		Pose:     geometry.NewPoseFromPoint(cam.FromRobot(r3.Vec{X: 1000, Y: -400, Z: 50})),
		Response: 0.6,
	}
	center, ok := cam.Project(c.Pose.Translation)
	require.True(t, ok)
	split := int(math.Round(center.X))
	img := ballImage()
	img.brightness = func(x, y int) uint8 {
		if x < split {
			return 30
		}
		return 220
	}

	v := newTestPerceptor(t, cfg).Check(img, cam, c, nil)
	require.Equal(t, GatePattern, v.Gate)
	require.True(t, v.Samples.Complete)
	assert.False(t, v.Accepted)
	assert.NotZero(t, v.Samples.Pattern)

	v = newTestPerceptor(t, cfg, v.Samples.Pattern).Check(img, cam, c, nil)
	assert.True(t, v.Accepted)
	assert.Equal(t, StatusSeen, v.Status)
}

func TestViewFrame(t *testing.T) {
	f := newViewFrame(r3.Vec{Z: 10})
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, f.toCamera(r3.Vec{X: 1, Y: 2, Z: 3}))

	center := r3.Vec{X: 400, Y: 100, Z: 1000}
	f = newViewFrame(center)
	toCamera := r3.Scale(-1, r3.Unit(center))
	assert.InDelta(t, 0, r3.Norm(r3.Sub(toCamera, f.toCamera(r3.Vec{Z: -1}))), 1e-12)
	assert.InDelta(t, 0, f.toCamera(r3.Vec{X: 1}).Y, 1e-12)
	assert.Greater(t, f.toCamera(r3.Vec{Y: 1}).Y, 0.0)
	assert.InDelta(t, 1, r3.Dot(r3.Cross(f.x, f.y), f.z), 1e-12)

	f = newViewFrame(r3.Vec{Y: 5})
	assert.InDelta(t, 1, r3.Dot(r3.Cross(f.x, f.y), f.z), 1e-12)
}
