package geom

// Zoom limits for the canvas view.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// View maps image-space coordinates to screen-space coordinates. Offset is in
// screen pixels and unconstrained; Scale is clamped to [MinScale, MaxScale].
type View struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewView returns an identity view.
func NewView() View { return View{Scale: 1} }

// ToImage converts a screen-space point to image space.
func (v View) ToImage(p Point) Point {
	return Point{(p.X - v.OffsetX) / v.Scale, (p.Y - v.OffsetY) / v.Scale}
}

// ToScreen converts an image-space point to screen space.
func (v View) ToScreen(p Point) Point {
	return Point{p.X*v.Scale + v.OffsetX, p.Y*v.Scale + v.OffsetY}
}

// Pan shifts the view by a raw screen-space delta. Panning never converts to
// image space, so the drag distance matches the cursor exactly at every zoom.
func (v *View) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the scale by factor, clamped to the zoom limits, and
// recomputes the offsets so the image point under the screen position p stays
// fixed.
func (v *View) ZoomAt(p Point, factor float64) {
	anchor := v.ToImage(p)
	v.Scale = ClampScale(v.Scale * factor)
	v.OffsetX = p.X - anchor.X*v.Scale
	v.OffsetY = p.Y - anchor.Y*v.Scale
}

// ClampScale bounds a zoom factor to the allowed range.
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Compensate divides a screen-space visual size (stroke width, font size,
// handle size, padding) by the total zoom so its on-screen thickness stays
// constant regardless of zoom level.
func Compensate(size, totalScale float64) float64 {
	if totalScale <= 0 {
		return size
	}
	return size / totalScale
}
