package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"mask-drawing/internal/core/domain"
)

const (
	// MaxDimension bounds each side of a raster
	MaxDimension = 1 << 14
	// MaxPixels bounds the area of a raster, 256 MiB of RGBA
	MaxPixels = 1 << 26
)

// minRadius keeps a zero-radius stroke visible as a single pixel
const minRadius = 0.5

// Raster is an owned, fixed-size RGBA pixel buffer
type Raster struct {
	img *image.RGBA
}

// NewRaster allocates a width x height raster, every pixel transparent black
func NewRaster(width, height int) (*Raster, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &Raster{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension || width*height > MaxPixels {
		return fmt.Errorf("%w: image size %dx%d", domain.ErrInvalidInputData, width, height)
	}
	return nil
}

// Width returns the raster width in pixels
func (r *Raster) Width() int { return r.img.Bounds().Dx() }

// Height returns the raster height in pixels
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// At returns the pixel at x, y
func (r *Raster) At(x, y int) color.RGBA {
	return r.img.RGBAAt(x, y)
}

// Fill sets every pixel to c
func (r *Raster) Fill(c color.RGBA) {
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// PaintStroke overwrites every pixel whose centre lies within the stroke radius
// of the stroke path with c. There is no blending and no anti-aliasing, so the
// result only ever holds c or what was there before.
func (r *Raster) PaintStroke(s domain.Stroke, c color.RGBA) {
	if len(s.Points) == 0 {
		return
	}
	radius := math.Max(s.Radius, minRadius)

	if len(s.Points) == 1 {
		r.paintSegment(s.Points[0], s.Points[0], radius, c)
		return
	}
	for i := 1; i < len(s.Points); i++ {
		r.paintSegment(s.Points[i-1], s.Points[i], radius, c)
	}
}

// paintSegment fills the capsule of the given radius around segment a-b
func (r *Raster) paintSegment(a, b domain.Point, radius float64, c color.RGBA) {
	bounds := r.img.Bounds()
	minX := int(math.Floor(math.Min(a.X, b.X) - radius))
	maxX := int(math.Ceil(math.Max(a.X, b.X) + radius))
	minY := int(math.Floor(math.Min(a.Y, b.Y) - radius))
	maxY := int(math.Ceil(math.Max(a.Y, b.Y) + radius))

	box := image.Rect(minX, minY, maxX+1, maxY+1).Intersect(bounds)
	if box.Empty() {
		return
	}

	r2 := radius * radius
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if distSqToSegment(float64(x)+0.5, float64(y)+0.5, a, b) <= r2 {
				r.img.SetRGBA(x, y, c)
			}
		}
	}
}

// EncodePNG encodes the raster losslessly
func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func distSqToSegment(px, py float64, a, b domain.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-a.X)*dx + (py-a.Y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	return (px-cx)*(px-cx) + (py-cy)*(py-cy)
}
