// Package cvframe provides the frame accessors over OpenCV matrices, for
// pipelines that already decode camera images with gocv.
package cvframe

import (
	"fmt"

	"gocv.io/x/gocv"

	"ball-perceptor/pkg/colorutil"
)

// Frame holds the grayscale and HSV conversions of a BGR image. Close must
// be called to release the matrices.
type Frame struct {
	gray gocv.Mat
	hsv  gocv.Mat
	cl   colorutil.Classifier
}

// New converts a BGR matrix. The source is not retained.
func New(bgr gocv.Mat, cl colorutil.Classifier) (*Frame, error) {
	if bgr.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	hsv := gocv.NewMat()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	return &Frame{gray: gray, hsv: hsv, cl: cl}, nil
}

// Load reads an image file with OpenCV.
func Load(path string, cl colorutil.Classifier) (*Frame, error) {
	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	return New(bgr, cl)
}

// Close releases the matrices.
func (f *Frame) Close() error {
	if err := f.gray.Close(); err != nil {
		return err
	}
	return f.hsv.Close()
}

// Width returns the image width in pixels.
func (f *Frame) Width() int {
	return f.gray.Cols()
}

// Height returns the image height in pixels.
func (f *Frame) Height() int {
	return f.gray.Rows()
}

// Brightness returns the grayscale value at (x, y).
func (f *Frame) Brightness(x, y int) uint8 {
	return f.gray.GetUCharAt(y, x)
}

// IsGreen reports whether (x, y) shows field carpet.
func (f *Frame) IsGreen(x, y int) bool {
	return f.classAt(x, y) == colorutil.ClassGreen
}

// IsWhite reports whether (x, y) is white.
func (f *Frame) IsWhite(x, y int) bool {
	return f.classAt(x, y) == colorutil.ClassWhite
}

// classAt reads the OpenCV HSV triple (H 0-180, S and V 0-255).
func (f *Frame) classAt(x, y int) colorutil.Class {
	h := float64(f.hsv.GetUCharAt(y, x*3+0)) * 2
	s := float64(f.hsv.GetUCharAt(y, x*3+1)) / 255
	v := float64(f.hsv.GetUCharAt(y, x*3+2)) / 255
	return f.cl.ClassifyHSV(h, s, v)
}

