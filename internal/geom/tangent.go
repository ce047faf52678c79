package geom

import "math"

// Segment is a line segment between two points.
type Segment struct {
	A, B Point
}

// ExternalTangents computes the two external tangent segments between a
// target circle of radius targetR centred at the origin and a source circle
// of radius sourceR centred at offset (the source centre relative to the
// target centre). Each returned segment runs from its tangent point on the
// target circle to the matching tangent point on the source circle.
//
// When the circles overlap or one contains the other (centre distance
// <= |targetR - sourceR|) no external tangent exists and the function
// degrades to a single segment joining the two centres.
func ExternalTangents(offset Point, sourceR, targetR float64) []Segment {
	d := math.Hypot(offset.X, offset.Y)
	if d == 0 || d <= math.Abs(targetR-sourceR) {
		return []Segment{{Point{}, offset}}
	}
	base := math.Atan2(offset.Y, offset.X)
	alpha := math.Asin((targetR - sourceR) / d)

	segs := make([]Segment, 0, 2)
	for _, sign := range []float64{1, -1} {
		theta := base + sign*(math.Pi/2-alpha)
		onTarget := Point{math.Cos(theta) * targetR, math.Sin(theta) * targetR}
		onSource := offset.Add(Point{math.Cos(theta) * sourceR, math.Sin(theta) * sourceR})
		segs = append(segs, Segment{onTarget, onSource})
	}
	return segs
}
