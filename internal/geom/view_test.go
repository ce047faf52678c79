package geom

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	v := NewView()
	v.Pan(30, -12)

	cursor := Pt(200, 150)
	before := v.ToImage(cursor)
	v.ZoomAt(cursor, 1.1)
	after := v.ToImage(cursor)

	if !scalar.EqualWithinAbs(before.X, after.X, tol) || !scalar.EqualWithinAbs(before.Y, after.Y, tol) {
		t.Errorf("anchor moved: before %+v after %+v", before, after)
	}
	if !scalar.EqualWithinAbs(v.Scale, 1.1, tol) {
		t.Errorf("scale = %g, want 1.1", v.Scale)
	}
}

func TestZoomClamped(t *testing.T) {
	v := NewView()
	for i := 0; i < 100; i++ {
		v.ZoomAt(Pt(0, 0), 1.5)
	}
	if v.Scale != MaxScale {
		t.Errorf("scale = %g, want clamped to %g", v.Scale, MaxScale)
	}
	for i := 0; i < 100; i++ {
		v.ZoomAt(Pt(0, 0), 0.5)
	}
	if v.Scale != MinScale {
		t.Errorf("scale = %g, want clamped to %g", v.Scale, MinScale)
	}
}

func TestPanIsScreenSpace(t *testing.T) {
	v := NewView()
	v.Scale = 2
	v.Pan(10, 20)
	if v.OffsetX != 10 || v.OffsetY != 20 {
		t.Errorf("pan converted unexpectedly: offset (%g, %g)", v.OffsetX, v.OffsetY)
	}
}

func TestToImageToScreenRoundTrip(t *testing.T) {
	v := View{Scale: 2.5, OffsetX: -40, OffsetY: 17}
	p := Pt(123, -45)
	got := v.ToImage(v.ToScreen(p))
	if !scalar.EqualWithinAbs(got.X, p.X, tol) || !scalar.EqualWithinAbs(got.Y, p.Y, tol) {
		t.Errorf("round trip drifted: %+v -> %+v", p, got)
	}
}

func TestCompensate(t *testing.T) {
	// A 4px visual stroke at total zoom 2 draws 2px wide in image space.
	if got := Compensate(4, 2); got != 2 {
		t.Errorf("Compensate(4, 2) = %g, want 2", got)
	}
	if got := Compensate(4, 0); got != 4 {
		t.Errorf("Compensate with zero scale should pass through, got %g", got)
	}
}
