package effects

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func uniformRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestMosaicUniformRegionUnchanged(t *testing.T) {
	c := color.RGBA{R: 120, G: 80, B: 200, A: 255}
	src := uniformRGBA(40, 40, c)
	out := Mosaic(src, 10)

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if got := out.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, c)
			}
		}
	}
}

func TestMosaicRadiusFloor(t *testing.T) {
	src := uniformRGBA(8, 8, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	// Radius 0 must behave as radius 2, not panic or no-op into garbage.
	out := Mosaic(src, 0)
	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: %v", out.Bounds())
	}
}

func TestMosaicPreservesAlpha(t *testing.T) {
	src := uniformRGBA(10, 10, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	src.SetRGBA(3, 3, color.RGBA{R: 50, G: 50, B: 50, A: 128})
	out := Mosaic(src, 3)
	if out.RGBAAt(3, 3).A != 128 {
		t.Errorf("alpha at (3,3) = %d, want 128", out.RGBAAt(3, 3).A)
	}
}

func TestMosaicPicksLowVarianceSide(t *testing.T) {
	// Left half flat black, right half noisy. Pixels on the left edge of
	// the boundary should take their color from the flat side.
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				src.SetRGBA(x, y, color.RGBA{A: 255})
			} else {
				v := uint8((x*31 + y*57) % 251)
				src.SetRGBA(x, y, color.RGBA{R: v, G: 255 - v, B: v ^ 0xAA, A: 255})
			}
		}
	}
	out := Mosaic(src, 5)
	got := out.RGBAAt(19, 10)
	if got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("boundary pixel took the noisy side: %+v", got)
	}
}

// naiveWindow recomputes window statistics pixel by pixel for comparison
// with the summed-area tables.
func naiveWindow(src *image.RGBA, x0, y0, x1, y1 int) (mean [3]float64, variance float64) {
	n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
	var sum, sq [3]float64
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px := src.RGBAAt(x, y)
			for c, v := range [3]float64{float64(px.R), float64(px.G), float64(px.B)} {
				sum[c] += v
				sq[c] += v * v
			}
		}
	}
	for c := 0; c < 3; c++ {
		mean[c] = sum[c] / n
		variance += sq[c]/n - mean[c]*mean[c]
	}
	return mean, variance
}

func TestIntegralMatchesNaiveStats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			src.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 17) % 256),
				G: uint8((y * 29) % 256),
				B: uint8((x*y + 3) % 256),
				A: 255,
			})
		}
	}
	tab := buildIntegral(src)

	windows := [][4]int{
		{0, 0, 15, 11},
		{0, 0, 0, 0},
		{3, 2, 9, 8},
		{10, 5, 15, 11},
	}
	for _, w := range windows {
		gotMean, gotVar := tab.window(w[0], w[1], w[2], w[3])
		wantMean, wantVar := naiveWindow(src, w[0], w[1], w[2], w[3])
		for c := 0; c < 3; c++ {
			if math.Abs(gotMean[c]-wantMean[c]) > 1e-6 {
				t.Errorf("window %v channel %d mean %g, want %g", w, c, gotMean[c], wantMean[c])
			}
		}
		if math.Abs(gotVar-wantVar) > 1e-3 {
			t.Errorf("window %v variance %g, want %g", w, gotVar, wantVar)
		}
	}
}

func TestPlaceholderFlatFill(t *testing.T) {
	c := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	img := Placeholder(6, 4, c)
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if img.RGBAAt(5, 3) != c {
		t.Errorf("fill = %+v, want %+v", img.RGBAAt(5, 3), c)
	}
}
