package ball

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/pattern"
	"ball-perceptor/internal/sphere"
	"ball-perceptor/pkg/geometry"
)

// Gate names the stage of the check that decided a candidate.
type Gate int

const (
	GateResponse Gate = iota
	GateRadius
	GateFastAccept
	GateSurround
	GatePattern
)

// String returns the gate name.
func (g Gate) String() string {
	switch g {
	case GateResponse:
		return "response"
	case GateRadius:
		return "radius"
	case GateFastAccept:
		return "fastAccept"
	case GateSurround:
		return "surround"
	case GatePattern:
		return "pattern"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// Verdict is the result of checking a single candidate. Fields are filled up
// to the deciding gate.
type Verdict struct {
	Accepted       bool               `json:"accepted"`
	Status         Status             `json:"status"`
	Gate           Gate               `json:"gate"`
	Candidate      Candidate          `json:"candidate"`
	Center         geometry.Point2D   `json:"center"`
	Radius         float64            `json:"radius"`          // Measured image radius
	ExpectedRadius float64            `json:"expected_radius"` // Image radius of a ball resting on the ground
	Outline        []geometry.Point2D `json:"outline"`         // Projected silhouette
	Distance       float64            `json:"distance"`
	Surround       SurroundRatios     `json:"surround"`
	Samples        SampleResult       `json:"samples"`
}

// Perceptor checks ball candidates against a pattern table. It is immutable
// after construction and safe for concurrent use.
type Perceptor struct {
	cfg          Config
	table        *pattern.Table
	samplePoints []r3.Vec
	contour      []r3.Vec
	logger       zerolog.Logger
}

// NewPerceptor creates a perceptor. The table must have been built for the
// sample points of cfg.Pattern.
func NewPerceptor(cfg Config, table *pattern.Table, logger zerolog.Logger) (*Perceptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrNilTable
	}
	if table.Key().Spec() != cfg.Pattern {
		return nil, fmt.Errorf("%w: table %+v, config %+v", ErrTableMismatch, table.Key().Spec(), cfg.Pattern)
	}
	cfg.GreenCheckRadiusRatios = append([]float64(nil), cfg.GreenCheckRadiusRatios...)
	return &Perceptor{
		cfg:          cfg,
		table:        table,
		samplePoints: table.Points(),
		contour:      sphere.Subdivide(cfg.ContourSubdivisions),
		logger:       logger,
	}, nil
}

// Setup loads the pattern table from cachePath, building and saving it when
// the cache is missing or stale, and creates a perceptor for it.
func Setup(ctx context.Context, cfg Config, tex *pattern.Texture, cachePath string, logger zerolog.Logger) (*Perceptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, built, err := pattern.LoadOrBuild(ctx, cachePath, tex, cfg.Pattern, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare pattern table: %w", err)
	}
	logger.Info().
		Int("patterns", table.Len()).
		Int("samplePoints", len(table.Points())).
		Bool("built", built).
		Msg("pattern table ready")
	return NewPerceptor(cfg, table, logger)
}

// Config returns the configuration of the perceptor.
func (p *Perceptor) Config() Config {
	return p.cfg
}

// Table returns the pattern table of the perceptor.
func (p *Perceptor) Table() *pattern.Table {
	return p.table
}

// Perceive checks the candidates in order of decreasing response and
// publishes the first accepted one. trace may be nil.
func (p *Perceptor) Perceive(img Image, cam Camera, candidates []Candidate, trace *Trace) Percept {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Response > candidates[order[b]].Response
	})

	for _, i := range order {
		trace.begin(i)
		v := p.Check(img, cam, candidates[i], trace)
		if e := p.logger.Debug(); e.Enabled() {
			if v.Gate == GatePattern {
				e = e.Str("pattern", v.Samples.Pattern.Format(len(p.samplePoints)))
			}
			e.Int("candidate", i).
				Float64("response", candidates[i].Response).
				Stringer("gate", v.Gate).
				Bool("accepted", v.Accepted).
				Msg("ball candidate checked")
		}
		if !v.Accepted {
			continue
		}
		return Percept{
			Status:          v.Status,
			Candidate:       v.Candidate,
			PositionInImage: v.Center,
			RadiusInImage:   v.Radius,
			PositionOnField: cam.ToRobot(v.Candidate.Pose.Translation),
			Distance:        v.Distance,
		}
	}
	return Percept{Status: StatusNotSeen}
}

// Check runs the gates on a single candidate. trace may be nil.
func (p *Perceptor) Check(img Image, cam Camera, c Candidate, trace *Trace) Verdict {
	v := Verdict{Candidate: c, Gate: GateResponse}
	reject := func(g Gate) Verdict {
		v.Gate = g
		return v
	}
	accept := func(g Gate, s Status) Verdict {
		v.Gate = g
		v.Accepted = true
		v.Status = s
		return v
	}

	if !trace.leq(p.cfg.MinResponse, c.Response, "minResponse") {
		return reject(GateResponse)
	}

	center, ok := cam.Project(c.Pose.Translation)
	if !trace.result(ok, "centerInFront") {
		return reject(GateRadius)
	}
	v.Center = center
	robot := cam.ToRobot(c.Pose.Translation)
	v.Distance = math.Hypot(robot.X, robot.Y)

	measured, outline, ok := p.imageRadius(cam, c.Pose.Translation)
	if !trace.result(ok, "radiusMeasured") {
		return reject(GateRadius)
	}
	v.Radius = measured
	v.Outline = outline
	expected, ok := p.expectedRadius(cam, center)
	if !trace.result(ok, "groundIntersection") {
		return reject(GateRadius)
	}
	v.ExpectedRadius = expected
	if !trace.leq(math.Abs(measured-expected)/expected, p.cfg.MaxRadiusDeviation, "maxRadiusDeviation") {
		return reject(GateRadius)
	}

	if trace.result(p.cfg.SkipMostChecks, "skipMostChecks") {
		return accept(GateFastAccept, StatusGuessed)
	}
	if trace.leq(p.cfg.MaxResponse, c.Response, "maxResponse") {
		return accept(GateFastAccept, StatusSeen)
	}

	v.Surround = p.surround(img, center.Round(), expected)
	if !trace.leq(p.cfg.MinAroundGreenRatio, v.Surround.Green, "minAroundGreenRatio") {
		relaxed := trace.leq(p.cfg.MinAroundDistance, v.Distance, "minAroundDistance") &&
			trace.leq(v.Distance, p.cfg.MaxAroundDistance, "maxAroundDistance") &&
			trace.leq(p.cfg.MinAroundNonWhiteRatio, v.Surround.NonWhite, "minAroundNonWhiteRatio") &&
			trace.leq(p.cfg.MinResponseWithinGreen, c.Response, "minResponseWithinGreen")
		if !relaxed {
			return reject(GateSurround)
		}
	}

	v.Samples = p.checkSamplePoints(img, cam, c, trace)
	if !v.Samples.Passed {
		return reject(GatePattern)
	}
	return accept(GatePattern, StatusSeen)
}

// imageRadius projects the contour mesh of a ball centred at center and
// returns the largest distance of its convex outline from the projected
// centre, together with the outline.
func (p *Perceptor) imageRadius(cam Camera, center r3.Vec) (float64, []geometry.Point2D, bool) {
	c, ok := cam.Project(center)
	if !ok {
		return 0, nil, false
	}
	pts := make([]geometry.Point2D, 0, len(p.contour))
	for _, v := range p.contour {
		if px, ok := cam.Project(r3.Add(center, r3.Scale(p.cfg.BallRadius, v))); ok {
			pts = append(pts, px)
		}
	}
	outline := geometry.ConvexHull(pts)
	if len(outline) < 3 {
		return 0, nil, false
	}
	return geometry.MaxDistance(c, outline), outline, true
}

// expectedRadius returns the image radius of a ball lying on the ground
// whose centre projects to px.
func (p *Perceptor) expectedRadius(cam Camera, px geometry.Point2D) (float64, bool) {
	dist, ok := cam.IntersectHorizontal(px, p.cfg.BallRadius)
	if !ok {
		return 0, false
	}
	radius, _, ok := p.imageRadius(cam, r3.Scale(dist, cam.Ray(px)))
	return radius, ok
}
