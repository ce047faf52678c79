package geom

import "math"

// PathOp identifies a path segment operation.
type PathOp int

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo
	ClosePath
)

// PathSeg is one step of a vector path. Ctrl is only meaningful for QuadTo.
type PathSeg struct {
	Op   PathOp
	P    Point
	Ctrl Point
}

// TailSide selects which third of a speech bubble's bottom edge carries the
// tail.
type TailSide int

const (
	TailLeft TailSide = iota
	TailRight
)

// RoundedRect builds the standard four-quadratic-curve rounded rectangle
// path. The corner radius is clamped to min(radius, width/2, height/2).
func RoundedRect(r Rect, radius float64) []PathSeg {
	radius = clampCorner(r, radius)
	return []PathSeg{
		{Op: MoveTo, P: Point{r.Min.X + radius, r.Min.Y}},
		{Op: LineTo, P: Point{r.Max.X - radius, r.Min.Y}},
		{Op: QuadTo, Ctrl: Point{r.Max.X, r.Min.Y}, P: Point{r.Max.X, r.Min.Y + radius}},
		{Op: LineTo, P: Point{r.Max.X, r.Max.Y - radius}},
		{Op: QuadTo, Ctrl: Point{r.Max.X, r.Max.Y}, P: Point{r.Max.X - radius, r.Max.Y}},
		{Op: LineTo, P: Point{r.Min.X + radius, r.Max.Y}},
		{Op: QuadTo, Ctrl: Point{r.Min.X, r.Max.Y}, P: Point{r.Min.X, r.Max.Y - radius}},
		{Op: LineTo, P: Point{r.Min.X, r.Min.Y + radius}},
		{Op: QuadTo, Ctrl: Point{r.Min.X, r.Min.Y}, P: Point{r.Min.X + radius, r.Min.Y}},
		{Op: ClosePath},
	}
}

func clampCorner(r Rect, radius float64) float64 {
	if radius < 0 {
		return 0
	}
	if half := r.Dx() / 2; radius > half {
		radius = half
	}
	if half := r.Dy() / 2; radius > half {
		radius = half
	}
	return radius
}

// Arrowhead builds a closed seven-point polygon for a filled arrow from one
// point to another: a tapered tail widening toward a triangular head. The
// head length is min(0.35*length, maxHead); maxHead is expected to already be
// zoom-compensated by the caller.
func Arrowhead(from, to Point, strokeWidth, maxHead float64) []Point {
	length := from.Dist(to)
	if length == 0 {
		return nil
	}
	ux := (to.X - from.X) / length
	uy := (to.Y - from.Y) / length
	// unit normal
	nx, ny := -uy, ux

	headLen := 0.35 * length
	if headLen > maxHead {
		headLen = maxHead
	}
	base := Point{to.X - ux*headLen, to.Y - uy*headLen}

	tailW := strokeWidth * 0.5
	shaftW := strokeWidth * 1.2
	headW := headLen * 0.5
	if headW < shaftW {
		headW = shaftW
	}

	at := func(p Point, w float64) Point { return Point{p.X + nx*w, p.Y + ny*w} }
	return []Point{
		at(from, tailW),
		at(base, shaftW),
		at(base, headW),
		to,
		at(base, -headW),
		at(base, -shaftW),
		at(from, -tailW),
	}
}

// SpeechBubble builds a rounded rectangle path with a triangular tail
// inserted into the bottom edge. The tail occupies the left or right third of
// the edge and extends tailLen below it.
func SpeechBubble(r Rect, radius float64, side TailSide, tailLen float64) []PathSeg {
	radius = clampCorner(r, radius)
	third := r.Dx() / 3

	var tailStart, tailEnd float64
	switch side {
	case TailRight:
		tailStart = r.Min.X + 2*third
		tailEnd = math.Min(tailStart+third/2, r.Max.X-radius)
	default:
		tailEnd = r.Min.X + third
		tailStart = math.Max(tailEnd-third/2, r.Min.X+radius)
	}
	tipX := (tailStart + tailEnd) / 2

	segs := []PathSeg{
		{Op: MoveTo, P: Point{r.Min.X + radius, r.Min.Y}},
		{Op: LineTo, P: Point{r.Max.X - radius, r.Min.Y}},
		{Op: QuadTo, Ctrl: Point{r.Max.X, r.Min.Y}, P: Point{r.Max.X, r.Min.Y + radius}},
		{Op: LineTo, P: Point{r.Max.X, r.Max.Y - radius}},
		{Op: QuadTo, Ctrl: Point{r.Max.X, r.Max.Y}, P: Point{r.Max.X - radius, r.Max.Y}},
		// bottom edge, right to left, with the tail inserted
		{Op: LineTo, P: Point{tailEnd, r.Max.Y}},
		{Op: LineTo, P: Point{tipX, r.Max.Y + tailLen}},
		{Op: LineTo, P: Point{tailStart, r.Max.Y}},
		{Op: LineTo, P: Point{r.Min.X + radius, r.Max.Y}},
		{Op: QuadTo, Ctrl: Point{r.Min.X, r.Max.Y}, P: Point{r.Min.X, r.Max.Y - radius}},
		{Op: LineTo, P: Point{r.Min.X, r.Min.Y + radius}},
		{Op: QuadTo, Ctrl: Point{r.Min.X, r.Min.Y}, P: Point{r.Min.X + radius, r.Min.Y}},
		{Op: ClosePath},
	}
	return segs
}

// FlattenPath converts a path to a polygon outline, subdividing quadratic
// curves into steps straight segments per curve.
func FlattenPath(segs []PathSeg, steps int) []Point {
	if steps < 1 {
		steps = 8
	}
	var out []Point
	var cur Point
	for _, s := range segs {
		switch s.Op {
		case MoveTo:
			cur = s.P
			out = append(out, cur)
		case LineTo:
			cur = s.P
			out = append(out, cur)
		case QuadTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				mt := 1 - t
				x := mt*mt*cur.X + 2*mt*t*s.Ctrl.X + t*t*s.P.X
				y := mt*mt*cur.Y + 2*mt*t*s.Ctrl.Y + t*t*s.P.Y
				out = append(out, Point{x, y})
			}
			cur = s.P
		case ClosePath:
		}
	}
	return out
}
