// Package annotation defines the canonical annotation data model: one
// variant per drawing tool, a shared set of common fields, and the factory
// that populates variant fields from the current style defaults.
package annotation

import (
	"image"
	"image/color"

	"github.com/example/markpix/internal/geom"
)

// Kind tags an annotation variant.
type Kind int

const (
	KindRect Kind = iota
	KindEllipse
	KindArrow
	KindLine
	KindText
	KindBrush
	KindMarker
	KindMosaic
	KindImage
	KindMagnifier
)

var kindNames = map[Kind]string{
	KindRect:      "rect",
	KindEllipse:   "ellipse",
	KindArrow:     "arrow",
	KindLine:      "line",
	KindText:      "text",
	KindBrush:     "brush",
	KindMarker:    "marker",
	KindMosaic:    "mosaic",
	KindImage:     "image",
	KindMagnifier: "magnifier",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// DashStyle selects the stroke dash pattern.
type DashStyle int

const (
	DashSolid DashStyle = iota
	DashDashed
)

// Style carries the stroke and fill appearance shared by the shape variants.
type Style struct {
	StrokeColor color.RGBA
	StrokeWidth float64
	FillColor   color.RGBA
	FillOpacity float64
	Dash        DashStyle
}

// Common holds the fields every annotation variant shares. Position is the
// variant's anchor point in image-space pixels (top-left corner for box
// shapes, centre for ellipse/marker/magnifier, first point for the point-list
// shapes). ScaleX/ScaleY are kept at 1 outside of an active transform
// gesture; committed transforms are folded back into the variant geometry.
type Common struct {
	ID       string
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	Visible  bool
	Locked   bool
}

func (c *Common) common() *Common { return c }

// Position returns the anchor point of the annotation.
func (c *Common) Position() geom.Point { return geom.Pt(c.X, c.Y) }

// MoveBy shifts the anchor point by the given image-space delta.
func (c *Common) MoveBy(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// Annotation is the tagged union over all variants. Exactly one concrete
// variant type exists per Kind; consumers switch on the concrete type so that
// adding a variant is a compile-visible change at every consumption site.
type Annotation interface {
	Kind() Kind
	// Bounds returns the variant's axis-aligned bounding box in image space.
	Bounds() geom.Rect
	// Clone returns a deep copy. Pixel buffers held by Image variants are
	// immutable after creation and are shared, not copied.
	Clone() Annotation

	common() *Common
}

// Base returns the mutable common fields of any annotation.
func Base(a Annotation) *Common { return a.common() }

// Rect is an axis-aligned rectangle outline with optional fill.
type Rect struct {
	Common
	Style
	W, H float64
}

func (*Rect) Kind() Kind { return KindRect }

func (r *Rect) Bounds() geom.Rect { return geom.RectXYWH(r.X, r.Y, r.W, r.H) }

func (r *Rect) Clone() Annotation {
	c := *r
	return &c
}

// Ellipse is centred on its position with independent radii.
type Ellipse struct {
	Common
	Style
	RX, RY float64
}

func (*Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) Bounds() geom.Rect {
	return geom.Rect{
		Min: geom.Pt(e.X-e.RX, e.Y-e.RY),
		Max: geom.Pt(e.X+e.RX, e.Y+e.RY),
	}
}

func (e *Ellipse) Clone() Annotation {
	c := *e
	return &c
}

// Arrow is a two-point segment rendered as a filled arrowhead polygon.
// Points are stored relative to the annotation position.
type Arrow struct {
	Common
	Style
	Points [2]geom.Point
}

func (*Arrow) Kind() Kind { return KindArrow }

func (a *Arrow) Bounds() geom.Rect { return pointListBounds(a.Position(), a.Points[:]) }

func (a *Arrow) Clone() Annotation {
	c := *a
	return &c
}

// Length returns the arrow length in image pixels.
func (a *Arrow) Length() float64 { return a.Points[0].Dist(a.Points[1]) }

// Line is a plain two-point segment. Points are relative to the position.
type Line struct {
	Common
	Style
	Points [2]geom.Point
}

func (*Line) Kind() Kind { return KindLine }

func (l *Line) Bounds() geom.Rect { return pointListBounds(l.Position(), l.Points[:]) }

func (l *Line) Clone() Annotation {
	c := *l
	return &c
}

// Length returns the segment length in image pixels.
func (l *Line) Length() float64 { return l.Points[0].Dist(l.Points[1]) }

// Brush is a freehand stroke: an open polyline of points relative to the
// position.
type Brush struct {
	Common
	Style
	Points []geom.Point
}

func (*Brush) Kind() Kind { return KindBrush }

func (b *Brush) Bounds() geom.Rect { return pointListBounds(b.Position(), b.Points) }

func (b *Brush) Clone() Annotation {
	c := *b
	c.Points = append([]geom.Point(nil), b.Points...)
	return &c
}

// Text is a text label, optionally wrapped in a speech bubble.
type Text struct {
	Common
	Color      color.RGBA
	FontSize   float64
	FontFamily string
	Content    string
	Bubble     bool
	TailSide   geom.TailSide
}

func (*Text) Kind() Kind { return KindText }

// Bounds uses a fixed per-glyph heuristic box; exact glyph metrics belong to
// the rendering layer, which may not be available where hit-testing runs.
func (t *Text) Bounds() geom.Rect {
	w := float64(len(t.Content)) * t.FontSize * 0.6
	if w < t.FontSize {
		w = t.FontSize
	}
	return geom.RectXYWH(t.X, t.Y, w, t.FontSize*1.2)
}

func (t *Text) Clone() Annotation {
	c := *t
	return &c
}

// Marker is a numbered disc. Value carries the counter at creation time;
// Label renders it either as the number itself or as a spreadsheet-style
// letter sequence (1 -> A, 26 -> Z, 27 -> AA).
type Marker struct {
	Common
	Color    color.RGBA
	Size     float64
	Value    int
	Lettered bool
}

func (*Marker) Kind() Kind { return KindMarker }

func (m *Marker) Bounds() geom.Rect {
	return geom.Rect{
		Min: geom.Pt(m.X-m.Size, m.Y-m.Size),
		Max: geom.Pt(m.X+m.Size, m.Y+m.Size),
	}
}

func (m *Marker) Clone() Annotation {
	c := *m
	return &c
}

// Label returns the display text for the marker.
func (m *Marker) Label() string {
	if !m.Lettered {
		return itoa(m.Value)
	}
	n := m.Value
	if n < 1 {
		n = 1
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// Mosaic marks a rectangular region to be pixelated with the
// region-adaptive mosaic filter.
type Mosaic struct {
	Common
	W, H         float64
	Radius       int
	CornerRadius float64
}

func (*Mosaic) Kind() Kind { return KindMosaic }

func (m *Mosaic) Bounds() geom.Rect { return geom.RectXYWH(m.X, m.Y, m.W, m.H) }

func (m *Mosaic) Clone() Annotation {
	c := *m
	return &c
}

// Image is a pasted raster annotation. Pixels are immutable once set; clones
// share the buffer.
type Image struct {
	Common
	W, H   float64
	Pixels *image.RGBA
}

func (*Image) Kind() Kind { return KindImage }

func (i *Image) Bounds() geom.Rect { return geom.RectXYWH(i.X, i.Y, i.W, i.H) }

func (i *Image) Clone() Annotation {
	c := *i
	return &c
}

// Magnifier shows a zoomed copy of a small source circle inside a larger
// target circle, connected by the two external tangent lines. The position is
// the target (large) circle centre; SourceX/SourceY is the absolute source
// centre, kept fixed when the target circle is dragged.
type Magnifier struct {
	Common
	SourceX, SourceY float64
	SourceRadius     float64
	TargetRadius     float64
	Zoom             float64
}

func (*Magnifier) Kind() Kind { return KindMagnifier }

func (m *Magnifier) Bounds() geom.Rect {
	target := geom.Rect{
		Min: geom.Pt(m.X-m.TargetRadius, m.Y-m.TargetRadius),
		Max: geom.Pt(m.X+m.TargetRadius, m.Y+m.TargetRadius),
	}
	source := geom.Rect{
		Min: geom.Pt(m.SourceX-m.SourceRadius, m.SourceY-m.SourceRadius),
		Max: geom.Pt(m.SourceX+m.SourceRadius, m.SourceY+m.SourceRadius),
	}
	return target.Union(source)
}

func (m *Magnifier) Clone() Annotation {
	c := *m
	return &c
}

// SourceOffset returns the source centre relative to the target centre, the
// input expected by the tangent-line solver.
func (m *Magnifier) SourceOffset() geom.Point {
	return geom.Pt(m.SourceX-m.X, m.SourceY-m.Y)
}

func pointListBounds(pos geom.Point, pts []geom.Point) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{Min: pos, Max: pos}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return geom.Rect{
		Min: geom.Pt(pos.X+minX, pos.Y+minY),
		Max: geom.Pt(pos.X+maxX, pos.Y+maxY),
	}
}

// CloneAll deep-copies a slice of annotations preserving order.
func CloneAll(anns []Annotation) []Annotation {
	if anns == nil {
		return nil
	}
	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = a.Clone()
	}
	return out
}
