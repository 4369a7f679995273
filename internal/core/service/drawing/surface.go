package drawing

import (
	"fmt"
	"math"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"sync"
)

// State is the interaction state of a Surface
type State string

const (
	StateEmpty   State = "empty"
	StateDrawing State = "drawing"
	StateIdle    State = "idle"
)

// Surface records user strokes over an image. Points reach it either in
// source-image pixels or in display pixels of a scaled canvas; everything
// stored is in source pixels.
type Surface struct {
	mu sync.Mutex

	width, height               int
	displayWidth, displayHeight int

	minRadius, maxRadius float64
	step                 float64
	radius               float64

	strokes    []domain.Stroke
	active     bool
	mask       *domain.MaskImage
	generation uint64
}

// NewSurface creates a surface for a width x height source image shown on a
// display canvas sized by cfg. A zero display size means unscaled.
func NewSurface(width, height int, cfg config.BrushConfig) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: surface size %dx%d", domain.ErrInvalidInputData, width, height)
	}
	if cfg.MinRadius <= 0 || cfg.MaxRadius < cfg.MinRadius {
		return nil, fmt.Errorf("%w: brush range [%v, %v]", domain.ErrInvalidInputData, cfg.MinRadius, cfg.MaxRadius)
	}

	s := &Surface{
		width:         width,
		height:        height,
		displayWidth:  cfg.DisplayWidth,
		displayHeight: cfg.DisplayHeight,
		minRadius:     cfg.MinRadius,
		maxRadius:     cfg.MaxRadius,
		step:          cfg.Step,
	}
	if s.displayWidth <= 0 || s.displayHeight <= 0 {
		s.displayWidth, s.displayHeight = width, height
	}
	s.radius = s.clamp(cfg.DefaultRadius)
	return s, nil
}

// Size returns the source-pixel dimensions of the surface
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// ToSource converts a display-canvas point to source-image pixels
func (s *Surface) ToSource(p domain.Point) domain.Point {
	return domain.Point{
		X: p.X * float64(s.width) / float64(s.displayWidth),
		Y: p.Y * float64(s.height) / float64(s.displayHeight),
	}
}

// sourceRadius converts the brush radius, which is chosen on the display canvas,
// to source pixels using the mean of both axis scales
func (s *Surface) sourceRadius() float64 {
	sx := float64(s.width) / float64(s.displayWidth)
	sy := float64(s.height) / float64(s.displayHeight)
	return s.radius * (sx + sy) / 2
}

// BeginStroke starts a stroke at p, given in source pixels. A stroke still in
// progress is ended first.
func (s *Surface) BeginStroke(p domain.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin(p)
}

// BeginStrokeDisplay is BeginStroke with p in display pixels
func (s *Surface) BeginStrokeDisplay(p domain.Point) {
	s.BeginStroke(s.ToSource(p))
}

func (s *Surface) begin(p domain.Point) {
	s.active = true
	s.strokes = append(s.strokes, domain.Stroke{
		Radius: s.sourceRadius(),
		Points: []domain.Point{p},
	})
}

// ExtendStroke appends p, given in source pixels, to the stroke in progress.
// It is ignored when no stroke is in progress.
func (s *Surface) ExtendStroke(p domain.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	last := &s.strokes[len(s.strokes)-1]
	last.Points = append(last.Points, p)
}

// ExtendStrokeDisplay is ExtendStroke with p in display pixels
func (s *Surface) ExtendStrokeDisplay(p domain.Point) {
	s.ExtendStroke(s.ToSource(p))
}

// EndStroke finishes the stroke in progress, if any
func (s *Surface) EndStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// BrushRadius returns the current radius in display pixels
func (s *Surface) BrushRadius() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.radius
}

// SetBrushRadius sets the radius for the next strokes, clamped to the configured range
func (s *Surface) SetBrushRadius(r float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radius = s.clamp(r)
	return s.radius
}

// IncreaseBrush grows the radius by one step
func (s *Surface) IncreaseBrush() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radius = s.clamp(s.radius + s.step)
	return s.radius
}

// DecreaseBrush shrinks the radius by one step
func (s *Surface) DecreaseBrush() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radius = s.clamp(s.radius - s.step)
	return s.radius
}

func (s *Surface) clamp(r float64) float64 {
	if math.IsNaN(r) || r < s.minRadius {
		return s.minRadius
	}
	if r > s.maxRadius {
		return s.maxRadius
	}
	return r
}

// Clear discards every stroke and the mask derived from them
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokes = nil
	s.active = false
	s.mask = nil
	s.generation++
}

// Generation counts Clear calls. A mask composed from a snapshot taken at one
// generation belongs to a discarded drawing once the generation moves on.
func (s *Surface) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SnapshotAt returns the drawing together with its generation
func (s *Surface) SnapshotAt() (domain.DrawingLayer, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DrawingLayer{Strokes: s.strokes}.Clone(), s.generation
}

// Snapshot returns a copy of the drawing. It never changes the surface.
func (s *Surface) Snapshot() domain.DrawingLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DrawingLayer{Strokes: s.strokes}.Clone()
}

// State returns the interaction state
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.active:
		return StateDrawing
	case len(s.strokes) == 0:
		return StateEmpty
	default:
		return StateIdle
	}
}

// SetMask caches the mask generated from the current drawing
func (s *Surface) SetMask(m *domain.MaskImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask = m
}

// SetMaskFor caches m only if the surface is still at generation gen
func (s *Surface) SetMaskFor(gen uint64, m *domain.MaskImage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.mask = m
	return true
}

// Mask returns the cached mask, nil after Clear
func (s *Surface) Mask() *domain.MaskImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask
}
