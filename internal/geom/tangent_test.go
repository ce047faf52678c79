package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-6

func TestExternalTangentsSymmetric(t *testing.T) {
	// Source circle 100px to the right of the target, radii 20 and 40.
	offset := Pt(100, 0)
	segs := ExternalTangents(offset, 20, 40)
	if len(segs) != 2 {
		t.Fatalf("expected 2 tangents, got %d", len(segs))
	}

	for i, seg := range segs {
		if d := math.Hypot(seg.A.X, seg.A.Y); !scalar.EqualWithinAbs(d, 40, tol) {
			t.Errorf("segment %d: target endpoint at distance %g, want 40", i, d)
		}
		ds := math.Hypot(seg.B.X-offset.X, seg.B.Y-offset.Y)
		if !scalar.EqualWithinAbs(ds, 20, tol) {
			t.Errorf("segment %d: source endpoint at distance %g, want 20", i, ds)
		}
	}

	// The two tangents mirror each other across the centre line (the x axis).
	if !scalar.EqualWithinAbs(segs[0].A.Y, -segs[1].A.Y, tol) {
		t.Errorf("target endpoints not mirrored: %g vs %g", segs[0].A.Y, segs[1].A.Y)
	}
	if !scalar.EqualWithinAbs(segs[0].B.Y, -segs[1].B.Y, tol) {
		t.Errorf("source endpoints not mirrored: %g vs %g", segs[0].B.Y, segs[1].B.Y)
	}

	// Tangency: each segment is perpendicular to the target radius at its
	// touch point.
	for i, seg := range segs {
		dir := seg.B.Sub(seg.A)
		dot := dir.X*seg.A.X + dir.Y*seg.A.Y
		if !scalar.EqualWithinAbs(dot, 0, 1e-3) {
			t.Errorf("segment %d not perpendicular to radius, dot %g", i, dot)
		}
	}
}

func TestExternalTangentsDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		offset Point
		rs, rt float64
	}{
		{"coincident centres", Pt(0, 0), 20, 40},
		{"contained circle", Pt(10, 0), 20, 40},
		{"touching internally", Pt(20, 0), 20, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segs := ExternalTangents(tc.offset, tc.rs, tc.rt)
			if len(segs) != 1 {
				t.Fatalf("expected single centre segment, got %d", len(segs))
			}
			if segs[0].A != (Point{}) || segs[0].B != tc.offset {
				t.Errorf("centre segment endpoints wrong: %+v", segs[0])
			}
		})
	}
}

func TestExternalTangentsAnyAngle(t *testing.T) {
	// Rotating the configuration must rotate the tangent points with it.
	offset := Pt(60, 80) // distance 100
	segs := ExternalTangents(offset, 10, 30)
	if len(segs) != 2 {
		t.Fatalf("expected 2 tangents, got %d", len(segs))
	}
	for i, seg := range segs {
		if d := math.Hypot(seg.A.X, seg.A.Y); !scalar.EqualWithinAbs(d, 30, tol) {
			t.Errorf("segment %d target endpoint distance %g, want 30", i, d)
		}
	}
}
