package ball

import (
	"fmt"
	"math"

	"ball-perceptor/internal/pattern"
)

// Config holds all tunables of the ball perceptor. Distances are in
// millimetres, angles in radians, image sizes in pixels.
type Config struct {
	BallRadius          float64      `yaml:"ball_radius"`          // Radius of the official ball
	ContourSubdivisions int          `yaml:"contour_subdivisions"` // Subdivisions of the sphere mesh whose projection gives the image radius
	Pattern             pattern.Spec `yaml:"pattern"`              // Sample points and orientation sweep of the pattern table
	Search              SearchConfig `yaml:"search"`

	MinResponse            float64 `yaml:"min_response"`              // Minimum detector response of a ball candidate
	MaxResponse            float64 `yaml:"max_response"`              // Response that is accepted without surround and pattern checks
	MinResponseWithinGreen float64 `yaml:"min_response_within_green"` // Minimum response to accept a ball just because it is surrounded by non-white

	MaxRadiusDeviation float64 `yaml:"max_radius_deviation"` // Maximum relative deviation between measured and expected image radius

	GreenCheckRadiusRatios []float64 `yaml:"green_check_radius_ratios"`  // Additional radius (relative to the ball radius) of each surround ring
	NumberOfGreenChecks    int       `yaml:"number_of_green_checks"`     // Pixels checked per ring
	MinAroundGreenRatio    float64   `yaml:"min_around_green_ratio"`     // Minimum ratio of green pixels around the ball
	MinAroundNonWhiteRatio float64   `yaml:"min_around_non_white_ratio"` // Minimum ratio of non-white pixels for the relaxed surround check
	MinAroundDistance      float64   `yaml:"min_around_distance"`        // Minimum distance for the relaxed surround check
	MaxAroundDistance      float64   `yaml:"max_around_distance"`        // Maximum distance for the relaxed surround check

	BrightnessBonus float64 `yaml:"brightness_bonus"` // Brightness added at the bottom of the ball, scaled by sample height
	MinContrast     float64 `yaml:"min_contrast"`     // Minimum mean brightness difference between bright and dark samples

	SkipMostChecks bool `yaml:"skip_most_checks"` // Accept every candidate that passes the response and radius checks
}

// SearchConfig bounds the search window handed to the candidate detector.
type SearchConfig struct {
	MaxTableRadius   float64 `yaml:"max_table_radius"`  // Maximum ball distance covered by the detector's contour table
	MinTableHeight   float64 `yaml:"min_table_height"`  // Minimum camera height covered by the contour table
	MaxTableHeight   float64 `yaml:"max_table_height"`  // Maximum camera height covered by the contour table
	Spacing          float64 `yaml:"spacing"`           // Spatial discretisation of the contour table
	UsePrediction    bool    `yaml:"use_prediction"`    // Seed the search with the predicted ball position
	RefineIterations int     `yaml:"refine_iterations"` // Refinement iterations after the global search
	RefineStepSize   float64 `yaml:"refine_step_size"`  // Refinement step size in pixels
}

// DefaultConfig returns a Config tuned for the SPL ball seen from a NAO head camera.
func DefaultConfig() Config {
	return Config{
		BallRadius:          50,
		ContourSubdivisions: 3,
		Pattern: pattern.Spec{
			SampleSubdivisions: 2,
			SampleDepthRatio:   0.3,
			SampleHeightRatio:  0.6,
			SampleRange:        math.Pi,
			SampleStep:         10 * math.Pi / 180,
		},
		Search: SearchConfig{
			MaxTableRadius:   5000,
			MinTableHeight:   300,
			MaxTableHeight:   600,
			Spacing:          20,
			UsePrediction:    true,
			RefineIterations: 3,
			RefineStepSize:   1,
		},

		MinResponse:            0.3,
		MaxResponse:            0.8,
		MinResponseWithinGreen: 0.5,

		MaxRadiusDeviation: 0.2,

		GreenCheckRadiusRatios: []float64{0.2, 0.5},
		NumberOfGreenChecks:    24,
		MinAroundGreenRatio:    0.8,
		MinAroundNonWhiteRatio: 0.9,
		MinAroundDistance:      1500,
		MaxAroundDistance:      5000,

		BrightnessBonus: 20,
		MinContrast:     40,
	}
}

// WithSkipMostChecks returns a copy of the config with the fast path switched.
func (c Config) WithSkipMostChecks(skip bool) Config {
	c.SkipMostChecks = skip
	return c
}

// WithResponseRange returns a copy of the config with new response bounds.
func (c Config) WithResponseRange(minResponse, maxResponse float64) Config {
	c.MinResponse = minResponse
	c.MaxResponse = maxResponse
	return c
}

// WithGreenChecks returns a copy of the config with new surround rings.
func (c Config) WithGreenChecks(ratios []float64, perRing int) Config {
	c.GreenCheckRadiusRatios = append([]float64(nil), ratios...)
	c.NumberOfGreenChecks = perRing
	return c
}

// WithPattern returns a copy of the config with a new pattern table spec.
func (c Config) WithPattern(spec pattern.Spec) Config {
	c.Pattern = spec
	return c
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	switch {
	case c.BallRadius <= 0:
		return fmt.Errorf("%w: ball radius %v", ErrInvalidConfig, c.BallRadius)
	case c.ContourSubdivisions < 0:
		return fmt.Errorf("%w: contour subdivisions %d", ErrInvalidConfig, c.ContourSubdivisions)
	case c.MinResponse > c.MaxResponse:
		return fmt.Errorf("%w: min response %v above max response %v", ErrInvalidConfig, c.MinResponse, c.MaxResponse)
	case len(c.GreenCheckRadiusRatios) > 0 && c.NumberOfGreenChecks <= 0:
		return fmt.Errorf("%w: %d green checks per ring", ErrInvalidConfig, c.NumberOfGreenChecks)
	case c.MinAroundDistance > c.MaxAroundDistance:
		return fmt.Errorf("%w: around distance window [%v, %v]", ErrInvalidConfig, c.MinAroundDistance, c.MaxAroundDistance)
	case c.Search.MinTableHeight > c.Search.MaxTableHeight:
		return fmt.Errorf("%w: table height window [%v, %v]", ErrInvalidConfig, c.Search.MinTableHeight, c.Search.MaxTableHeight)
	case c.MaxRadiusDeviation < 0:
		return fmt.Errorf("%w: radius deviation %v", ErrInvalidConfig, c.MaxRadiusDeviation)
	}
	if err := c.Pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
