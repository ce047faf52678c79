package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/effects"
	"github.com/example/markpix/internal/geom"
)

// Options controls a flatten pass. Scale is the total view scale the output
// will be displayed at; size-like annotation fields hold visual sizes and are
// divided by it so strokes and glyphs keep a constant on-screen size across
// zoom levels. Export passes use Scale 1.
type Options struct {
	Scale     float64
	Draft     annotation.Annotation
	Selection map[string]struct{}
	Marquee   *geom.Rect
	CropArea  *geom.Rect
}

const (
	arrowMaxHead  = 40.0
	selectionDash = 5.0
	bubbleTailLen = 18.0
	bubbleRadius  = 8.0
	bubblePad     = 6.0
)

var (
	selectionColor = color.RGBA{R: 30, G: 144, B: 255, A: 255}
	cropDimColor   = color.RGBA{A: 110}
	bubbleFill     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Flatten rasterizes the annotation list over base and returns a new buffer.
// Annotations draw in list order, earliest at the bottom. base is left
// untouched; mosaic and magnifier regions sample the scene composited up to
// their own stacking position, so content moved underneath them is picked up.
func Flatten(base *image.RGBA, anns []annotation.Annotation, opts Options) *image.RGBA {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	dst := image.NewRGBA(base.Bounds())
	draw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, draw.Src)

	for _, a := range anns {
		if !annotation.Base(a).Visible {
			continue
		}
		drawAnnotation(dst, base, anns, a, opts.Scale)
	}
	if opts.Draft != nil {
		drawAnnotation(dst, base, anns, opts.Draft, opts.Scale)
	}
	drawOverlays(dst, anns, opts)
	return dst
}

func drawAnnotation(dst, base *image.RGBA, anns []annotation.Annotation, a annotation.Annotation, scale float64) {
	switch v := a.(type) {
	case *annotation.Rect:
		drawRectAnnotation(dst, v, scale)
	case *annotation.Ellipse:
		drawEllipseAnnotation(dst, v, scale)
	case *annotation.Line:
		p0 := v.Position().Add(v.Points[0])
		p1 := v.Position().Add(v.Points[1])
		thick := strokePx(v.StrokeWidth, scale)
		if v.Dash == annotation.DashDashed {
			drawDashedSegment(dst, p0, p1, dashLen(scale), v.StrokeColor, thick)
		} else {
			drawLine(dst, int(p0.X), int(p0.Y), int(p1.X), int(p1.Y), v.StrokeColor, thick)
		}
	case *annotation.Arrow:
		p0 := v.Position().Add(v.Points[0])
		p1 := v.Position().Add(v.Points[1])
		poly := geom.Arrowhead(p0, p1, geom.Compensate(v.StrokeWidth, scale), arrowMaxHead/scale)
		fillPolygon(dst, poly, v.StrokeColor)
	case *annotation.Brush:
		pts := make([]geom.Point, len(v.Points))
		for i, p := range v.Points {
			pts[i] = v.Position().Add(p)
		}
		drawPolyline(dst, pts, v.StrokeColor, strokePx(v.StrokeWidth, scale))
	case *annotation.Text:
		drawTextAnnotation(dst, v, scale)
	case *annotation.Marker:
		drawMarkerAnnotation(dst, v, scale)
	case *annotation.Mosaic:
		drawMosaicAnnotation(dst, base, anns, v)
	case *annotation.Image:
		effects.DrawStamp(dst, v)
	case *annotation.Magnifier:
		drawMagnifierAnnotation(dst, base, anns, v, scale)
	}
}

func drawRectAnnotation(dst *image.RGBA, v *annotation.Rect, scale float64) {
	r := v.Bounds()
	if v.FillOpacity > 0 {
		fill := withAlpha(v.FillColor, v.FillOpacity)
		draw.Draw(dst, image.Rect(int(r.Min.X), int(r.Min.Y), int(r.Max.X), int(r.Max.Y)),
			image.NewUniform(fill), image.Point{}, draw.Over)
	}
	thick := strokePx(v.StrokeWidth, scale)
	if v.Dash == annotation.DashDashed {
		drawDashedRect(dst, r, dashLen(scale), v.StrokeColor, thick)
	} else {
		drawRectOutline(dst, r, v.StrokeColor, thick)
	}
}

func drawEllipseAnnotation(dst *image.RGBA, v *annotation.Ellipse, scale float64) {
	if v.FillOpacity > 0 {
		drawFilledEllipse(dst, v.X, v.Y, v.RX, v.RY, withAlpha(v.FillColor, v.FillOpacity))
	}
	drawEllipseOutline(dst, v.X, v.Y, v.RX, v.RY, v.StrokeColor, strokePx(v.StrokeWidth, scale))
}

func drawTextAnnotation(dst *image.RGBA, v *annotation.Text, scale float64) {
	size := geom.Compensate(v.FontSize, scale)
	w, h, _, err := MeasureText(v.Content, size)
	if err != nil {
		return
	}
	if v.Bubble {
		pad := bubblePad / scale
		box := geom.RectXYWH(v.X-pad, v.Y-pad, float64(w)+2*pad, float64(h)+2*pad)
		path := geom.SpeechBubble(box, bubbleRadius/scale, v.TailSide, bubbleTailLen/scale)
		poly := geom.FlattenPath(path, 8)
		fillPolygon(dst, poly, bubbleFill)
		outline := append(poly, poly[0])
		drawPolyline(dst, outline, v.Color, 1)
	}
	_ = DrawText(dst, int(v.X), int(v.Y), v.Content, v.Color, size)
}

func drawMarkerAnnotation(dst *image.RGBA, v *annotation.Marker, scale float64) {
	r := geom.Compensate(v.Size, scale)
	drawFilledCircle(dst, int(v.X), int(v.Y), int(r), v.Color)
	drawCenteredText(dst, int(v.X), int(v.Y), v.Label(), labelColor(v.Color), r)
}

func drawMosaicAnnotation(dst, base *image.RGBA, anns []annotation.Annotation, v *annotation.Mosaic) {
	b := v.Bounds()
	region := image.Rect(int(b.Min.X), int(b.Min.Y), int(math.Ceil(b.Max.X)), int(math.Ceil(b.Max.Y)))
	region = region.Intersect(base.Bounds())
	if region.Empty() {
		return
	}
	// Filter against the scene composited up to this annotation so stamps
	// moved underneath pixelate with it.
	scene := effects.CompositeUnder(base, anns, v.ID)
	sub := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(sub, sub.Bounds(), scene, region.Min, draw.Src)
	filtered := effects.Mosaic(sub, v.Radius)

	if v.CornerRadius <= 0 {
		draw.Draw(dst, region, filtered, image.Point{}, draw.Src)
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, region.Dx(), region.Dy()))
	local := geom.RectXYWH(b.Min.X-float64(region.Min.X), b.Min.Y-float64(region.Min.Y), b.Dx(), b.Dy())
	poly := geom.FlattenPath(geom.RoundedRect(local, v.CornerRadius), 8)
	fillAlphaPolygon(mask, poly)
	draw.DrawMask(dst, region, filtered, image.Point{}, mask, image.Point{}, draw.Over)
}

// fillAlphaPolygon rasterizes a polygon into an alpha mask, same scanline as
// fillPolygon.
func fillAlphaPolygon(mask *image.Alpha, pts []geom.Point) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.Y <= fy && b.Y > fy) || (b.Y <= fy && a.Y > fy) {
				t := (fy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		for i := 1; i < len(xs); i++ {
			for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
				xs[j], xs[j-1] = xs[j-1], xs[j]
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Round(xs[i])); x <= int(math.Round(xs[i+1])); x++ {
				if image.Pt(x, y).In(mask.Bounds()) {
					mask.SetAlpha(x, y, color.Alpha{A: 255})
				}
			}
		}
	}
}

func drawMagnifierAnnotation(dst, base *image.RGBA, anns []annotation.Annotation, v *annotation.Magnifier, scale float64) {
	scene := effects.CompositeUnder(base, anns, v.ID)
	// The radii are shape geometry, like a rect's width: they live in image
	// space and must agree with Bounds() hit-testing at every zoom. Only the
	// outline stroke is a visual size.
	targetR := v.TargetRadius
	sourceR := v.SourceRadius
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	// Zoomed copy: each pixel of the target circle samples the scene around
	// the source centre, shrunk by the zoom factor.
	cx, cy := v.X, v.Y
	ir := int(math.Ceil(targetR))
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) > targetR*targetR {
				continue
			}
			px := int(cx) + dx
			py := int(cy) + dy
			if !image.Pt(px, py).In(dst.Bounds()) {
				continue
			}
			sx := int(v.SourceX + float64(dx)/zoom)
			sy := int(v.SourceY + float64(dy)/zoom)
			if !image.Pt(sx, sy).In(scene.Bounds()) {
				continue
			}
			dst.SetRGBA(px, py, scene.RGBAAt(sx, sy))
		}
	}

	outline := color.RGBA{R: 60, G: 60, B: 60, A: 255}
	thick := strokePx(2, scale)
	drawCircle(dst, int(cx), int(cy), ir, outline, thick)
	drawCircle(dst, int(v.SourceX), int(v.SourceY), int(sourceR), outline, thick)

	// Tangent lines connect the two circles. The solver works relative to
	// the target centre.
	for _, seg := range geom.ExternalTangents(v.SourceOffset(), sourceR, targetR) {
		a := seg.A.Add(geom.Pt(cx, cy))
		b := seg.B.Add(geom.Pt(cx, cy))
		drawLine(dst, int(a.X), int(a.Y), int(b.X), int(b.Y), outline, thick)
	}
}

func drawOverlays(dst *image.RGBA, anns []annotation.Annotation, opts Options) {
	if opts.Selection != nil {
		for _, a := range anns {
			if _, ok := opts.Selection[annotation.Base(a).ID]; !ok {
				continue
			}
			drawDashedRect(dst, a.Bounds().Inset(-2/opts.Scale), selectionDash/opts.Scale, selectionColor, 1)
		}
	}
	if opts.Marquee != nil {
		drawDashedRect(dst, *opts.Marquee, selectionDash/opts.Scale, selectionColor, 1)
	}
	if opts.CropArea != nil {
		dimOutside(dst, *opts.CropArea)
		drawDashedRect(dst, *opts.CropArea, selectionDash/opts.Scale, color.White, 1)
	}
}

// dimOutside darkens everything except the kept rectangle.
func dimOutside(dst *image.RGBA, keep geom.Rect) {
	b := dst.Bounds()
	k := image.Rect(int(keep.Min.X), int(keep.Min.Y), int(keep.Max.X), int(keep.Max.Y)).Intersect(b)
	dim := image.NewUniform(cropDimColor)
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, k.Min.Y), dim, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(b.Min.X, k.Max.Y, b.Max.X, b.Max.Y), dim, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(b.Min.X, k.Min.Y, k.Min.X, k.Max.Y), dim, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(k.Max.X, k.Min.Y, b.Max.X, k.Max.Y), dim, image.Point{}, draw.Over)
}

func strokePx(visual, scale float64) int {
	t := int(math.Round(geom.Compensate(visual, scale)))
	if t < 1 {
		t = 1
	}
	return t
}

func dashLen(scale float64) float64 { return 8 / scale }
