package drawing

import "mask-drawing/internal/core/domain"

// Replay feeds recorded strokes through the surface as if drawn on the
// display canvas: each stroke sets the brush radius, then its points are
// begun, extended and ended in order. Strokes without points are skipped.
func (s *Surface) Replay(layer domain.DrawingLayer) int {
	replayed := 0
	for _, stroke := range layer.Strokes {
		if len(stroke.Points) == 0 {
			continue
		}
		s.SetBrushRadius(stroke.Radius)
		s.BeginStrokeDisplay(stroke.Points[0])
		for _, p := range stroke.Points[1:] {
			s.ExtendStrokeDisplay(p)
		}
		s.EndStroke()
		replayed++
	}
	return replayed
}
