// Package colorutil classifies pixels into field green, white and everything
// else for the ball perceptor.
package colorutil

import "github.com/lucasb-eyer/go-colorful"

// Class is the colour class of a single pixel.
type Class int

const (
	// ClassOther is anything that is neither field green nor white.
	ClassOther Class = iota
	// ClassGreen is field carpet.
	ClassGreen
	// ClassWhite is lines, goals, robots and the bright ball panels.
	ClassWhite
)

func (c Class) String() string {
	switch c {
	case ClassGreen:
		return "green"
	case ClassWhite:
		return "white"
	default:
		return "other"
	}
}

// Classifier holds the HSV bounds used for the colour classes.
// Hue is in degrees [0, 360), saturation and value in [0, 1].
type Classifier struct {
	GreenHueMin float64 `yaml:"green_hue_min"`
	GreenHueMax float64 `yaml:"green_hue_max"`
	GreenSatMin float64 `yaml:"green_sat_min"`
	GreenValMin float64 `yaml:"green_val_min"`

	WhiteSatMax float64 `yaml:"white_sat_max"`
	WhiteValMin float64 `yaml:"white_val_min"`
}

// DefaultClassifier returns bounds that work for a typical SPL carpet under
// indoor lighting.
func DefaultClassifier() Classifier {
	return Classifier{
		GreenHueMin: 70,
		GreenHueMax: 170,
		GreenSatMin: 0.25,
		GreenValMin: 0.15,

		WhiteSatMax: 0.25,
		WhiteValMin: 0.70,
	}
}

// ClassifyRGB classifies an 8-bit RGB triple.
func (cl Classifier) ClassifyRGB(r, g, b uint8) Class {
	cc := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	return cl.classifyHSV(cc.Hsv())
}

// ClassifyHSV classifies a colour given in HSV (hue in degrees, s and v in [0, 1]).
func (cl Classifier) ClassifyHSV(h, s, v float64) Class {
	return cl.classifyHSV(h, s, v)
}

func (cl Classifier) classifyHSV(h, s, v float64) Class {
	if s <= cl.WhiteSatMax && v >= cl.WhiteValMin {
		return ClassWhite
	}
	if h >= cl.GreenHueMin && h <= cl.GreenHueMax && s >= cl.GreenSatMin && v >= cl.GreenValMin {
		return ClassGreen
	}
	return ClassOther
}

// Luminance returns the 8-bit brightness of an RGB triple using the same
// integer weights as image/color's gray conversion.
func Luminance(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}
