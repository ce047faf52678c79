package annotation

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/example/markpix/internal/geom"
)

// ErrUnknownToolKind reports a tool type that has no annotation variant.
// Interaction modes such as select, pan and crop are not creatable and fall
// into this class; hitting it is a programming error, not user input.
var ErrUnknownToolKind = errors.New("annotation: unknown tool kind")

// ToolConfig is the single mutable record of current default style values.
// It is created once at startup, shared across tool switches, updated in
// place, and never captured by history snapshots.
type ToolConfig struct {
	StrokeColor color.RGBA
	StrokeWidth float64
	FillColor   color.RGBA
	FillOpacity float64
	Dash        DashStyle

	FontSize   float64
	FontFamily string
	TailSide   geom.TailSide

	MarkerSize     float64
	MarkerLettered bool

	MosaicRadius int
	MosaicCorner float64

	SourceRadius  float64
	TargetRadius  float64
	MagnifierZoom float64
}

// DefaultToolConfig returns the style defaults used when no configuration
// overrides them.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		StrokeColor:   color.RGBA{R: 0xFF, A: 0xFF},
		StrokeWidth:   4,
		FillColor:     color.RGBA{R: 0xFF, A: 0xFF},
		FillOpacity:   0,
		Dash:          DashSolid,
		FontSize:      20,
		FontFamily:    "go-regular",
		TailSide:      geom.TailLeft,
		MarkerSize:    14,
		MosaicRadius:  10,
		MosaicCorner:  4,
		SourceRadius:  24,
		TargetRadius:  72,
		MagnifierZoom: 2,
	}
}

func (c *ToolConfig) style() Style {
	return Style{
		StrokeColor: c.StrokeColor,
		StrokeWidth: c.StrokeWidth,
		FillColor:   c.FillColor,
		FillOpacity: c.FillOpacity,
		Dash:        c.Dash,
	}
}

// Option overrides a field on a freshly created annotation.
type Option func(Annotation)

// WithID overrides the generated identifier. Intended for tests.
func WithID(id string) Option {
	return func(a Annotation) { Base(a).ID = id }
}

// WithContent sets the content of a text annotation.
func WithContent(s string) Option {
	return func(a Annotation) {
		if t, ok := a.(*Text); ok {
			t.Content = s
		}
	}
}

// WithMarkerValue sets the counter value of a marker annotation.
func WithMarkerValue(v int) Option {
	return func(a Annotation) {
		if m, ok := a.(*Marker); ok {
			m.Value = v
		}
	}
}

// WithPixels sets the pixel buffer and natural size of an image annotation.
func WithPixels(img *image.RGBA) Option {
	return func(a Annotation) {
		if i, ok := a.(*Image); ok {
			i.Pixels = img
			i.W = float64(img.Bounds().Dx())
			i.H = float64(img.Bounds().Dy())
		}
	}
}

// New creates an annotation of the given kind anchored at origin, with every
// variant field populated from cfg unless an option overrides it. Shapes are
// created zero-sized; growth happens during the drawing gesture.
func New(kind Kind, cfg *ToolConfig, origin geom.Point, opts ...Option) (Annotation, error) {
	if cfg == nil {
		cfg = DefaultToolConfig()
	}
	common := Common{
		ID:      uuid.NewString(),
		X:       origin.X,
		Y:       origin.Y,
		ScaleX:  1,
		ScaleY:  1,
		Visible: true,
	}

	var a Annotation
	switch kind {
	case KindRect:
		a = &Rect{Common: common, Style: cfg.style()}
	case KindEllipse:
		a = &Ellipse{Common: common, Style: cfg.style()}
	case KindArrow:
		a = &Arrow{Common: common, Style: cfg.style()}
	case KindLine:
		a = &Line{Common: common, Style: cfg.style()}
	case KindBrush:
		a = &Brush{Common: common, Style: cfg.style(), Points: []geom.Point{{}}}
	case KindText:
		a = &Text{
			Common:     common,
			Color:      cfg.StrokeColor,
			FontSize:   cfg.FontSize,
			FontFamily: cfg.FontFamily,
			TailSide:   cfg.TailSide,
		}
	case KindMarker:
		a = &Marker{
			Common:   common,
			Color:    cfg.StrokeColor,
			Size:     cfg.MarkerSize,
			Value:    1,
			Lettered: cfg.MarkerLettered,
		}
	case KindMosaic:
		a = &Mosaic{
			Common:       common,
			Radius:       cfg.MosaicRadius,
			CornerRadius: cfg.MosaicCorner,
		}
	case KindImage:
		a = &Image{Common: common}
	case KindMagnifier:
		a = &Magnifier{
			Common:       common,
			SourceX:      origin.X,
			SourceY:      origin.Y,
			SourceRadius: cfg.SourceRadius,
			TargetRadius: cfg.TargetRadius,
			Zoom:         cfg.MagnifierZoom,
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownToolKind, kind)
	}

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}
