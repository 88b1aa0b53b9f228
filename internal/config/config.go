// Package config loads the YAML configuration of the ball perceptor tools.
// Values missing from a file keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ball-perceptor/internal/ball"
	"ball-perceptor/internal/camera"
	"ball-perceptor/internal/pattern"
	"ball-perceptor/pkg/colorutil"
)

// File is the content of a configuration file.
type File struct {
	Ball   ball.Config          `yaml:"ball"`
	Camera Camera               `yaml:"camera"`
	Colors colorutil.Classifier `yaml:"colors"`

	// Texture is an equirectangular image of the ball. Empty renders the
	// built-in texture.
	Texture string `yaml:"texture,omitempty"`
	// PatternCache is the pattern table cache file. Empty uses the default
	// location, "-" disables the cache.
	PatternCache string `yaml:"pattern_cache,omitempty"`
}

// Camera describes the camera the candidates were observed with.
type Camera struct {
	camera.Intrinsics `yaml:",inline"`
	MountHeight       float64 `yaml:"mount_height"` // mm above the ground
	TiltDeg           float64 `yaml:"tilt_deg"`     // Downward tilt of the optical axis
}

// Pinhole builds the camera model.
func (c Camera) Pinhole() (*camera.Pinhole, error) {
	return camera.NewPinhole(c.Intrinsics, camera.LookingAt(c.MountHeight, c.TiltDeg*math.Pi/180))
}

// Default returns the built-in configuration.
func Default() File {
	return File{
		Ball: ball.DefaultConfig(),
		Camera: Camera{
			Intrinsics:  camera.Intrinsics{Fx: 560, Fy: 560, Cx: 320, Cy: 240, Width: 640, Height: 480},
			MountHeight: 480,
			TiltDeg:     20,
		},
		Colors: colorutil.DefaultClassifier(),
	}
}

// Load reads a configuration file over the defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Texture != "" && !filepath.IsAbs(f.Texture) {
		f.Texture = filepath.Join(filepath.Dir(path), f.Texture)
	}
	return f, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are errors.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks all sections.
func (f *File) Validate() error {
	if err := f.Ball.Validate(); err != nil {
		return err
	}
	if err := f.Camera.Intrinsics.Validate(); err != nil {
		return err
	}
	if f.Camera.MountHeight <= 0 {
		return fmt.Errorf("%w: camera mount height %v", ball.ErrInvalidConfig, f.Camera.MountHeight)
	}
	return nil
}

// Save writes the configuration as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadTexture returns the configured ball texture, or the rendered one.
func (f *File) LoadTexture() (*pattern.Texture, error) {
	if f.Texture == "" {
		return pattern.RenderTexture(), nil
	}
	return pattern.LoadTexture(f.Texture)
}

// CachePath resolves the pattern cache location. An empty result disables
// the cache.
func (f *File) CachePath() (string, error) {
	switch f.PatternCache {
	case "-":
		return "", nil
	case "":
		return pattern.DefaultCachePath()
	default:
		return f.PatternCache, nil
	}
}
