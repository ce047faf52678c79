// Package render rasterizes the annotation list over a base image. It owns
// the pixel-level drawing primitives, glyph rendering and the flatten pass
// used both for on-screen paint and for export.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/markpix/internal/geom"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawDashedSegment walks the segment in dash-length steps, drawing every
// other step. Works for any orientation, unlike an axis-aligned fast path.
func drawDashedSegment(img *image.RGBA, a, b geom.Point, dash float64, col color.Color, thick int) {
	if dash <= 0 {
		dash = 4
	}
	length := a.Dist(b)
	if length == 0 {
		setThickPixel(img, int(a.X), int(a.Y), thick, col)
		return
	}
	steps := int(length / dash)
	on := true
	for i := 0; i <= steps; i++ {
		t0 := float64(i) * dash / length
		t1 := math.Min(float64(i+1)*dash/length, 1)
		if on {
			drawLine(img,
				int(a.X+(b.X-a.X)*t0), int(a.Y+(b.Y-a.Y)*t0),
				int(a.X+(b.X-a.X)*t1), int(a.Y+(b.Y-a.Y)*t1),
				col, thick)
		}
		on = !on
	}
}

func drawDashedRect(img *image.RGBA, r geom.Rect, dash float64, col color.Color, thick int) {
	tl := r.Min
	tr := geom.Pt(r.Max.X, r.Min.Y)
	br := r.Max
	bl := geom.Pt(r.Min.X, r.Max.Y)
	drawDashedSegment(img, tl, tr, dash, col, thick)
	drawDashedSegment(img, tr, br, dash, col, thick)
	drawDashedSegment(img, br, bl, dash, col, thick)
	drawDashedSegment(img, bl, tl, dash, col, thick)
}

func drawRectOutline(img *image.RGBA, r geom.Rect, col color.Color, thick int) {
	x0, y0 := int(r.Min.X), int(r.Min.Y)
	x1, y1 := int(r.Max.X), int(r.Max.Y)
	drawLine(img, x0, y0, x1, y0, col, thick)
	drawLine(img, x1, y0, x1, y1, col, thick)
	drawLine(img, x1, y1, x0, y1, col, thick)
	drawLine(img, x0, y1, x0, y0, col, thick)
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color, thick int) {
	if thick <= 1 {
		drawCircleThin(img, cx, cy, r, col)
		return
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		rr := r + start + i
		if rr >= 0 {
			drawCircleThin(img, cx, cy, rr, col)
		}
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}

func drawEllipseOutline(img *image.RGBA, cx, cy float64, rx, ry float64, col color.Color, thick int) {
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(rx*rx+ry*ry)))
	if steps < 8 {
		steps = 8
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := int(cx + math.Cos(angle)*rx)
		y := int(cy + math.Sin(angle)*ry)
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

func drawFilledEllipse(img *image.RGBA, cx, cy float64, rx, ry float64, col color.Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	iry := int(ry)
	for dy := -iry; dy <= iry; dy++ {
		span := int(rx * math.Sqrt(math.Max(0, 1.0-float64(dy*dy)/(ry*ry))))
		y := int(cy) + dy
		for dx := -span; dx <= span; dx++ {
			x := int(cx) + dx
			if image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, col)
			}
		}
	}
}

// fillPolygon rasterizes a simple polygon with an even-odd scanline fill.
// The draw.Over composite respects the color's alpha.
func fillPolygon(img *image.RGBA, pts []geom.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	src := image.NewUniform(col)
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	for y := y0; y <= y1; y++ {
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
		if len(xs) < 2 {
			continue
		}
		// insertion sort, crossing counts stay tiny
		for i := 1; i < len(xs); i++ {
			for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
				xs[j], xs[j-1] = xs[j-1], xs[j]
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			xa := int(math.Round(xs[i]))
			xb := int(math.Round(xs[i+1]))
			if xb < xa {
				continue
			}
			draw.Draw(img, image.Rect(xa, y, xb+1, y+1), src, image.Point{}, draw.Over)
		}
	}
}

// drawPolyline strokes an open point sequence.
func drawPolyline(img *image.RGBA, pts []geom.Point, col color.Color, thick int) {
	for i := 1; i < len(pts); i++ {
		drawLine(img, int(pts[i-1].X), int(pts[i-1].Y), int(pts[i].X), int(pts[i].Y), col, thick)
	}
}

// withAlpha scales a color's alpha by opacity in [0, 1].
func withAlpha(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		if c.A == 0 {
			c.A = 255
		}
		return c
	}
	if opacity <= 0 {
		return color.RGBA{}
	}
	a := c.A
	if a == 0 {
		a = 255
	}
	return color.RGBA{
		R: uint8(float64(c.R)*opacity + 0.5),
		G: uint8(float64(c.G)*opacity + 0.5),
		B: uint8(float64(c.B)*opacity + 0.5),
		A: uint8(float64(a)*opacity + 0.5),
	}
}
