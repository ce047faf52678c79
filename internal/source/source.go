// Package source loads the base image being annotated.
package source

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Load decodes the image at path into an RGBA buffer with zero-based bounds.
// Format is detected from the file contents.
func Load(path string) (*image.RGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to *image.RGBA, rebasing to a zero origin.
// Buffers that already qualify are returned as-is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
