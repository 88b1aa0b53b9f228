package pattern

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// TextureWidth is the number of texels along the longitude.
	TextureWidth = 300
	// TextureHeight is the number of texels along the latitude.
	TextureHeight = 150

	// FixedSplit separates dark from bright texels while building the table.
	FixedSplit = 127

	// panelBrightness and groundBrightness are the rendered tones.
	panelBrightness  = 0
	groundBrightness = 255
)

// Texture is an equirectangular brightness map of the ball surface.
// Column x covers longitude [-π, π), row y covers latitude from +π/2 down to -π/2.
type Texture struct {
	Width  int
	Height int
	Pix    []uint8
}

// At returns the texel at (x, y).
func (t *Texture) At(x, y int) uint8 {
	return t.Pix[y*t.Width+x]
}

// Brightness returns the texel hit by the direction v from the ball centre.
func (t *Texture) Brightness(v r3.Vec) uint8 {
	n := r3.Norm(v)
	if n == 0 {
		return t.At(0, 0)
	}
	lon := math.Atan2(v.Y, v.X)
	lat := math.Asin(clampUnit(v.Z / n))

	x := int((lon + math.Pi) / (2 * math.Pi) * float64(t.Width))
	if x >= t.Width {
		x -= t.Width
	}
	y := int((math.Pi/2 - lat) / math.Pi * float64(t.Height))
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.At(x, y)
}

// ID identifies the texture contents for cache keys.
func (t *Texture) ID() string {
	h := fnv.New64a()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[:4], uint32(t.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(t.Height))
	h.Write(dims[:])
	h.Write(t.Pix)
	return fmt.Sprintf("%016x", h.Sum64())
}

// direction returns the unit vector at the centre of texel (x, y).
func (t *Texture) direction(x, y int) r3.Vec {
	lon := (float64(x)+0.5)/float64(t.Width)*2*math.Pi - math.Pi
	lat := math.Pi/2 - (float64(y)+0.5)/float64(t.Height)*math.Pi
	cosLat := math.Cos(lat)
	return r3.Vec{X: cosLat * math.Cos(lon), Y: cosLat * math.Sin(lon), Z: math.Sin(lat)}
}

// panel is a spherical pentagon: a centre and the inward normals of the great
// circles through its edges.
type panel struct {
	center r3.Vec
	edges  []r3.Vec
}

func (p panel) contains(v r3.Vec) bool {
	if r3.Dot(p.center, v) <= 0 {
		return false
	}
	for _, n := range p.edges {
		if r3.Dot(n, v) < 0 {
			return false
		}
	}
	return true
}

// icosahedron returns the 12 unit vertices of a regular icosahedron.
func icosahedron() []r3.Vec {
	phi := (1 + math.Sqrt(5)) / 2
	var vs []r3.Vec
	for _, a := range []float64{-1, 1} {
		for _, b := range []float64{-phi, phi} {
			vs = append(vs,
				r3.Unit(r3.Vec{X: 0, Y: a, Z: b}),
				r3.Unit(r3.Vec{X: a, Y: b, Z: 0}),
				r3.Unit(r3.Vec{X: b, Y: 0, Z: a}),
			)
		}
	}
	return vs
}

// ballPanels returns the 12 dark pentagons of a truncated icosahedron. Each
// pentagon is centred on an icosahedron vertex, its corners sit a third of the
// way along the edges to the five neighbouring vertices.
func ballPanels() []panel {
	vs := icosahedron()
	// Neighbouring icosahedron vertices have a dot product of 1/√5.
	const neighbourDot = 0.4
	panels := make([]panel, 0, len(vs))
	for i, c := range vs {
		var nbs []r3.Vec
		for j, v := range vs {
			if i != j && r3.Dot(c, v) > neighbourDot {
				nbs = append(nbs, v)
			}
		}
		p := panel{center: c}
		for a := 0; a < len(nbs); a++ {
			for b := a + 1; b < len(nbs); b++ {
				if r3.Dot(nbs[a], nbs[b]) <= neighbourDot {
					continue
				}
				ca := r3.Add(c, r3.Scale(1.0/3, r3.Sub(nbs[a], c)))
				cb := r3.Add(c, r3.Scale(1.0/3, r3.Sub(nbs[b], c)))
				n := r3.Cross(ca, cb)
				if r3.Dot(n, c) < 0 {
					n = r3.Scale(-1, n)
				}
				p.edges = append(p.edges, n)
			}
		}
		panels = append(panels, p)
	}
	return panels
}

// RenderTexture draws the official ball: twelve dark pentagons on a white ground.
func RenderTexture() *Texture {
	t := &Texture{Width: TextureWidth, Height: TextureHeight, Pix: make([]uint8, TextureWidth*TextureHeight)}
	panels := ballPanels()
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.direction(x, y)
			b := uint8(groundBrightness)
			for _, p := range panels {
				if p.contains(v) {
					b = panelBrightness
					break
				}
			}
			t.Pix[y*t.Width+x] = b
		}
	}
	return t
}

// LoadTexture reads an equirectangular ball texture from an image file and
// resamples it to the standard texture size.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture: %w", err)
	}
	return TextureFromImage(src), nil
}

// TextureFromImage converts any image to a grayscale texture of the standard size.
func TextureFromImage(src image.Image) *Texture {
	dst := image.NewGray(image.Rect(0, 0, TextureWidth, TextureHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	pix := make([]uint8, TextureWidth*TextureHeight)
	for y := 0; y < TextureHeight; y++ {
		copy(pix[y*TextureWidth:(y+1)*TextureWidth], dst.Pix[y*dst.Stride:y*dst.Stride+TextureWidth])
	}
	return &Texture{Width: TextureWidth, Height: TextureHeight, Pix: pix}
}

func clampUnit(f float64) float64 {
	if f < -1 {
		return -1
	}
	if f > 1 {
		return 1
	}
	return f
}
