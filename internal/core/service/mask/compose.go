package mask

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"mask-drawing/internal/core/domain"
)

var (
	// BackgroundColor marks pixels outside the mask
	BackgroundColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	// StrokeColor marks masked pixels
	StrokeColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Compose rasterizes layer into a width x height black and white PNG.
// Strokes are expected in source-pixel coordinates already.
func Compose(layer domain.DrawingLayer, width, height int) ([]byte, error) {
	if err := validateLayer(layer); err != nil {
		return nil, err
	}

	raster, err := NewRaster(width, height)
	if err != nil {
		return nil, err
	}

	raster.Fill(BackgroundColor)
	for _, stroke := range layer.Strokes {
		raster.PaintStroke(stroke, StrokeColor)
	}

	return raster.EncodePNG()
}

// ComposeFor waits for src to finish decoding, then composes layer at the
// source's natural pixel dimensions
func ComposeFor(ctx context.Context, src *Source, layer domain.DrawingLayer) (*domain.MaskImage, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", domain.ErrImageNotReady)
	}

	asset, err := src.Wait(ctx)
	if err != nil {
		return nil, err
	}

	data, err := Compose(layer, asset.Width, asset.Height)
	if err != nil {
		return nil, err
	}

	return &domain.MaskImage{PNG: data, Width: asset.Width, Height: asset.Height}, nil
}

// maxCoordinate bounds point coordinates and radii so pixel bounds stay in int range
const maxCoordinate = MaxDimension * 4

func validateLayer(layer domain.DrawingLayer) error {
	for i, stroke := range layer.Strokes {
		if math.IsNaN(stroke.Radius) || stroke.Radius < 0 || stroke.Radius > maxCoordinate {
			return fmt.Errorf("%w: stroke %d has radius %v", domain.ErrInvalidInputData, i, stroke.Radius)
		}
		for _, p := range stroke.Points {
			if !inRange(p.X) || !inRange(p.Y) {
				return fmt.Errorf("%w: stroke %d has point (%v, %v) out of range", domain.ErrInvalidInputData, i, p.X, p.Y)
			}
		}
	}
	return nil
}

// inRange is false for NaN and infinities too
func inRange(v float64) bool {
	return v >= -maxCoordinate && v <= maxCoordinate
}
