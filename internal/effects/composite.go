package effects

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"

	"github.com/example/markpix/internal/annotation"
)

// CompositeUnder renders the background plus every image annotation that
// sits below limit in stacking order, in order, and returns the composited
// scene. A mosaic region must be filtered against this scene rather than the
// raw background so that stickers moved underneath it pixelate correctly.
// limit is the ID of the mosaic annotation; pass "" to composite everything.
func CompositeUnder(base *image.RGBA, anns []annotation.Annotation, limit string) *image.RGBA {
	out := image.NewRGBA(base.Bounds())
	draw.Draw(out, out.Bounds(), base, base.Bounds().Min, draw.Src)
	for _, a := range anns {
		if annotation.Base(a).ID == limit {
			break
		}
		img, ok := a.(*annotation.Image)
		if !ok || !img.Visible || img.Pixels == nil {
			continue
		}
		DrawStamp(out, img)
	}
	return out
}

// DrawStamp draws one image annotation onto dst at its display size,
// applying its rotation if set.
func DrawStamp(dst *image.RGBA, a *annotation.Image) {
	src := a.Pixels
	if a.Rotation != 0 {
		deg := a.Rotation * 180 / math.Pi
		src = transform.Rotate(src, deg, &transform.RotationOptions{ResizeBounds: true})
	}
	b := a.Bounds()
	w := int(math.Round(b.Dx()))
	h := int(math.Round(b.Dy()))
	if w <= 0 || h <= 0 {
		return
	}
	dr := image.Rect(int(math.Round(b.Min.X)), int(math.Round(b.Min.Y)),
		int(math.Round(b.Min.X))+w, int(math.Round(b.Min.Y))+h)
	xdraw.CatmullRom.Scale(dst, dr, src, src.Bounds(), draw.Over, nil)
}
