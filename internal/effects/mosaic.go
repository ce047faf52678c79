// Package effects holds the pixel-buffer passes the editor runs over image
// regions: the region-adaptive mosaic filter, scene compositing for stacked
// image annotations, and the scheduler that keeps superseded asynchronous
// passes from clobbering newer results.
package effects

import (
	"image"
	"image/color"
	"image/draw"
)

// integral is a per-channel summed-area table. sum and sq hold running sums
// and running sums of squares with a one-pixel border, so any rectangular
// window's sum is four corner lookups.
type integral struct {
	w, h int
	sum  [3][]float64
	sq   [3][]float64
}

func buildIntegral(src *image.RGBA) *integral {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	t := &integral{w: w, h: h}
	for c := 0; c < 3; c++ {
		t.sum[c] = make([]float64, (w+1)*(h+1))
		t.sq[c] = make([]float64, (w+1)*(h+1))
	}
	stride := w + 1
	for y := 0; y < h; y++ {
		row := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			px := src.Pix[row+x*4 : row+x*4+3 : row+x*4+3]
			for c := 0; c < 3; c++ {
				v := float64(px[c])
				i := (y+1)*stride + (x + 1)
				t.sum[c][i] = v + t.sum[c][i-1] + t.sum[c][i-stride] - t.sum[c][i-stride-1]
				t.sq[c][i] = v*v + t.sq[c][i-1] + t.sq[c][i-stride] - t.sq[c][i-stride-1]
			}
		}
	}
	return t
}

// window returns per-channel mean and the summed variance over the inclusive
// pixel window [x0,x1]x[y0,y1], already clipped by the caller.
func (t *integral) window(x0, y0, x1, y1 int) (mean [3]float64, variance float64) {
	stride := t.w + 1
	n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
	a := y0*stride + x0
	b := y0*stride + (x1 + 1)
	c := (y1+1)*stride + x0
	d := (y1+1)*stride + (x1 + 1)
	for ch := 0; ch < 3; ch++ {
		s := t.sum[ch][d] - t.sum[ch][b] - t.sum[ch][c] + t.sum[ch][a]
		ss := t.sq[ch][d] - t.sq[ch][b] - t.sq[ch][c] + t.sq[ch][a]
		m := s / n
		mean[ch] = m
		variance += ss/n - m*m
	}
	return mean, variance
}

// Mosaic applies the oil-painting style region-adaptive blur: each output
// pixel takes the mean color of whichever of its four overlapping radius x
// radius quadrant windows has the lowest summed channel variance. Windows
// are clipped at the buffer edges. Radii below 2 are raised to 2.
//
// The filter reruns on every resize and potentially every frame of a live
// drag, so the quadrant statistics come from summed-area tables rather than
// per-pixel window scans.
func Mosaic(src *image.RGBA, radius int) *image.RGBA {
	if radius < 2 {
		radius = 2
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	t := buildIntegral(src)

	clip := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// The four quadrant windows overlap at the current pixel.
			quads := [4][4]int{
				{x - radius, y - radius, x, y}, // up-left
				{x, y - radius, x + radius, y}, // up-right
				{x - radius, y, x, y + radius}, // down-left
				{x, y, x + radius, y + radius}, // down-right
			}
			var best [3]float64
			bestVar := -1.0
			for _, q := range quads {
				x0 := clip(q[0], 0, w-1)
				y0 := clip(q[1], 0, h-1)
				x1 := clip(q[2], 0, w-1)
				y1 := clip(q[3], 0, h-1)
				mean, v := t.window(x0, y0, x1, y1)
				if bestVar < 0 || v < bestVar {
					bestVar = v
					best = mean
				}
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = clamp8(best[0])
			out.Pix[i+1] = clamp8(best[1])
			out.Pix[i+2] = clamp8(best[2])
			out.Pix[i+3] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Placeholder returns a flat-fill buffer used when an asynchronous filter
// pass fails (for example when a source image cannot be decoded). The UI
// never blocks on a failed pass; it shows this instead.
func Placeholder(w, h int, col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	return img
}
