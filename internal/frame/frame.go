// Package frame provides read-only per-pixel brightness and colour class
// access over a camera image.
package frame

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"ball-perceptor/pkg/colorutil"
)

// Frame is a camera image with brightness and colour classes precomputed for
// every pixel. It is never modified after construction.
type Frame struct {
	Path   string // Source file, empty for in-memory images
	width  int
	height int
	gray   []uint8
	class  []colorutil.Class
}

// New converts an image into a Frame using the given colour classifier.
func New(img image.Image, cl colorutil.Classifier) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	f := &Frame{
		width:  w,
		height: h,
		gray:   make([]uint8, w*h),
		class:  make([]colorutil.Class, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
			i := y*w + x
			f.gray[i] = colorutil.Luminance(r8, g8, b8)
			f.class[i] = cl.ClassifyRGB(r8, g8, b8)
		}
	}
	return f
}

// Load loads an image from the specified path and returns a Frame.
func Load(path string, cl colorutil.Classifier) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	f := New(img, cl)
	f.Path = path
	return f, nil
}

// Width returns the image width in pixels.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the image height in pixels.
func (f *Frame) Height() int {
	return f.height
}

// Brightness returns the luminance at (x, y). The caller checks bounds.
func (f *Frame) Brightness(x, y int) uint8 {
	return f.gray[y*f.width+x]
}

// IsGreen reports whether (x, y) shows field carpet.
func (f *Frame) IsGreen(x, y int) bool {
	return f.class[y*f.width+x] == colorutil.ClassGreen
}

// IsWhite reports whether (x, y) is white.
func (f *Frame) IsWhite(x, y int) bool {
	return f.class[y*f.width+x] == colorutil.ClassWhite
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
