package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow composited under an exported
// image. A zero Opacity disables the effect.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns the shadow used when the config enables
// shadows without tuning them.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// ApplyShadow composites img onto an expanded canvas with a blurred drop
// shadow behind it. The returned offset reports where the original top-left
// corner landed on the new canvas, so callers can keep coordinates stable.
// The output always has zero-based bounds.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	src := img.Bounds()
	padded := src
	if radius > 0 {
		padded = padded.Inset(-radius)
	}
	shadowRect := padded.Add(opts.Offset)
	canvas := src.Union(shadowRect)
	out := image.NewRGBA(canvas.Sub(canvas.Min))
	if out.Bounds().Empty() {
		return img, image.Point{}
	}

	// Build the shadow silhouette from the image's own alpha so transparent
	// regions cast no shadow.
	sil := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				sil.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := boxBlurGray(sil, radius)

	alpha := uint8(opacity*255 + 0.5)
	origin := shadowRect.Min.Sub(canvas.Min)
	draw.DrawMask(out, blurred.Bounds().Add(origin),
		image.NewUniform(color.RGBA{A: alpha}), image.Point{},
		blurred, blurred.Bounds().Min, draw.Over)
	draw.Draw(out, src.Sub(canvas.Min), img, src.Min, draw.Over)

	return out, src.Min.Sub(canvas.Min)
}

// boxBlurGray runs one separable box-blur pass per axis using row and column
// prefix sums.
func boxBlurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(b)
	out := image.NewGray(b)

	prefix := make([]int, w+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}

	colPrefix := make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			colPrefix[y+1] = colPrefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			out.Pix[y*out.Stride+x] = uint8((colPrefix[y1+1] - colPrefix[y0]) / (y1 - y0 + 1))
		}
	}
	return out
}
