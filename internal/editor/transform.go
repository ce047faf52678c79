package editor

import (
	"math"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
)

// ApplyTransform folds an interactive scale and rotation for one annotation
// into its geometry and pushes a history entry. Scale factors are normalized
// away immediately: widths, radii, point lists and size-like style fields
// absorb them, so ScaleX and ScaleY on the record stay 1 and every consumer
// reads plain geometry. Rotation is stored as-is, in radians.
//
// Locked or unknown ids are ignored and reported false.
func (ed *Editor) ApplyTransform(id string, sx, sy, rotation float64) bool {
	a := ed.byID(id)
	if a == nil || annotation.Base(a).Locked {
		return false
	}
	if sx <= 0 || sy <= 0 {
		return false
	}
	if sx == 1 && sy == 1 && rotation == annotation.Base(a).Rotation {
		return false
	}
	smax := math.Max(sx, sy)

	switch v := a.(type) {
	case *annotation.Rect:
		v.W *= sx
		v.H *= sy
		v.StrokeWidth *= smax
	case *annotation.Mosaic:
		v.W *= sx
		v.H *= sy
	case *annotation.Image:
		v.W *= sx
		v.H *= sy
	case *annotation.Ellipse:
		v.RX *= sx
		v.RY *= sy
		v.StrokeWidth *= smax
	case *annotation.Arrow:
		scalePoints(v.Points[:], sx, sy)
		v.StrokeWidth *= smax
	case *annotation.Line:
		scalePoints(v.Points[:], sx, sy)
		v.StrokeWidth *= smax
	case *annotation.Brush:
		scalePoints(v.Points, sx, sy)
		v.StrokeWidth *= smax
	case *annotation.Text:
		v.FontSize *= smax
	case *annotation.Marker:
		v.Size *= smax
	case *annotation.Magnifier:
		v.SourceRadius *= smax
		v.TargetRadius *= smax
	}

	c := annotation.Base(a)
	c.Rotation = rotation
	c.ScaleX, c.ScaleY = 1, 1
	ed.push()
	return true
}

func scalePoints(pts []geom.Point, sx, sy float64) {
	for i := range pts {
		pts[i].X *= sx
		pts[i].Y *= sy
	}
}
