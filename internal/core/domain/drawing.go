package domain

// Point is a position in source-image pixel coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is an ordered run of points painted with one brush radius
type Stroke struct {
	Radius float64 `json:"radius"`
	Points []Point `json:"points"`
}

// DrawingLayer is the un-rasterized record of user strokes
type DrawingLayer struct {
	Strokes []Stroke `json:"strokes"`
}

// PointCount returns the number of recorded points across all strokes
func (l DrawingLayer) PointCount() int {
	n := 0
	for _, s := range l.Strokes {
		n += len(s.Points)
	}
	return n
}

// IsEmpty reports whether the layer has no recorded point
func (l DrawingLayer) IsEmpty() bool {
	return l.PointCount() == 0
}

// Clone returns a deep copy of the layer
func (l DrawingLayer) Clone() DrawingLayer {
	if l.Strokes == nil {
		return DrawingLayer{}
	}
	strokes := make([]Stroke, len(l.Strokes))
	for i, s := range l.Strokes {
		points := make([]Point, len(s.Points))
		copy(points, s.Points)
		strokes[i] = Stroke{Radius: s.Radius, Points: points}
	}
	return DrawingLayer{Strokes: strokes}
}
