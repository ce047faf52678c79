package render

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce    sync.Once
	fontErr     error
	regularFont *opentype.Font
	faceCache   sync.Map // map[float64]font.Face
)

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	if f, ok := faceCache.Load(size); ok {
		return f.(font.Face), nil
	}
	face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faceCache.Store(size, face)
	return face, nil
}

// MeasureText returns the bounding box of text at the given point size and
// the offset from the top of that box to the baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	return width, ascent + descent, ascent, nil
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(img *image.RGBA, x, y int, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+metrics.Ascent.Ceil()),
	}
	drawer.DrawString(text)
	return nil
}

// drawCenteredText renders text centred on (cx, cy).
func drawCenteredText(img *image.RGBA, cx, cy int, text string, col color.Color, size float64) {
	w, h, _, err := MeasureText(text, size)
	if err != nil {
		return
	}
	_ = DrawText(img, cx-w/2, cy-h/2, text, col, size)
}

// labelColor picks black or white for legibility against the disc color.
func labelColor(c color.RGBA) color.Color {
	brightness := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if brightness < 128 {
		return color.White
	}
	return color.Black
}
