// Package export produces the final flattened image and hands it to the
// filesystem or the system clipboard.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"golang.design/x/clipboard"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
	"github.com/example/markpix/internal/render"
)

// Options controls an export pass.
type Options struct {
	CropMask      *geom.Rect
	Shadow        bool
	ShadowOptions render.ShadowOptions
}

// Compose flattens the annotations over base at export scale, applies the
// committed crop mask and, when enabled, the drop shadow.
func Compose(base *image.RGBA, anns []annotation.Annotation, opts Options) *image.RGBA {
	out := render.Flatten(base, anns, render.Options{Scale: 1})
	if opts.CropMask != nil {
		out = cropRGBA(out, *opts.CropMask)
	}
	if opts.Shadow {
		so := opts.ShadowOptions
		if so == (render.ShadowOptions{}) {
			so = render.DefaultShadowOptions()
		}
		out, _ = render.ApplyShadow(out, so)
	}
	return out
}

func cropRGBA(img *image.RGBA, r geom.Rect) *image.RGBA {
	rect := image.Rect(int(r.Min.X), int(r.Min.Y), int(r.Max.X), int(r.Max.Y)).Intersect(img.Bounds())
	if rect.Empty() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		srcOff := img.PixOffset(rect.Min.X, rect.Min.Y+y)
		dstOff := out.PixOffset(0, y)
		copy(out.Pix[dstOff:dstOff+rect.Dx()*4], img.Pix[srcOff:srcOff+rect.Dx()*4])
	}
	return out
}

// ExpandPattern fills the {timestamp} placeholder in an output pattern and
// joins it under dir when the pattern is relative.
func ExpandPattern(pattern, dir string, now time.Time) string {
	if pattern == "" {
		pattern = "markpix-{timestamp}.png"
	}
	name := strings.ReplaceAll(pattern, "{timestamp}", now.Format("20060102-150405"))
	if dir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	return name
}

// Save writes img to the path derived from pattern and dir, returning the
// final path. Format follows the file extension.
func Save(img image.Image, pattern, dir string, now time.Time) (string, error) {
	path := ExpandPattern(pattern, dir, now)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

var (
	clipboardInit sync.Once
	clipboardErr  error
)

// CopyToClipboard places img on the system clipboard as PNG data.
func CopyToClipboard(img image.Image) error {
	clipboardInit.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		return fmt.Errorf("clipboard init: %w", clipboardErr)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard png: %w", err)
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}
