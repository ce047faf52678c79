package editor

import (
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
)

func press(x, y float64) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Button: mouse.ButtonLeft, Direction: mouse.DirPress}
}

func move(x, y float64) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Direction: mouse.DirNone}
}

func release(x, y float64) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Button: mouse.ButtonLeft, Direction: mouse.DirRelease}
}

func wheel(x, y float64, up bool) mouse.Event {
	b := mouse.ButtonWheelDown
	if up {
		b = mouse.ButtonWheelUp
	}
	return mouse.Event{X: float32(x), Y: float32(y), Button: b, Direction: mouse.DirStep}
}

func drag(ed *Editor, x0, y0, x1, y1 float64) {
	ed.HandleMouse(press(x0, y0))
	ed.HandleMouse(move((x0+x1)/2, (y0+y1)/2))
	ed.HandleMouse(move(x1, y1))
	ed.HandleMouse(release(x1, y1))
}

func TestRectangleDrawGesture(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)

	drag(ed, 10, 10, 100, 100)

	anns := ed.Annotations()
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	r, ok := anns[0].(*annotation.Rect)
	if !ok {
		t.Fatalf("expected *annotation.Rect, got %T", anns[0])
	}
	if r.X != 10 || r.Y != 10 || r.W != 90 || r.H != 90 {
		t.Errorf("rect (%g,%g %gx%g), want (10,10 90x90)", r.X, r.Y, r.W, r.H)
	}
	if !ed.CanUndo() {
		t.Error("completed gesture should push history")
	}
	if ed.InteractionState() != StateIdle {
		t.Errorf("state = %v, want idle", ed.InteractionState())
	}
}

func TestRectangleNormalizesReversedDrag(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 100, 100, 10, 10)

	r := ed.Annotations()[0].(*annotation.Rect)
	if r.X != 10 || r.Y != 10 || r.W != 90 || r.H != 90 {
		t.Errorf("rect (%g,%g %gx%g), want normalized (10,10 90x90)", r.X, r.Y, r.W, r.H)
	}
}

func TestSubThresholdDraftsDiscardSilently(t *testing.T) {
	cases := []struct {
		name string
		tool Tool
		x1   float64
		y1   float64
	}{
		{"tiny rect", ToolRect, 14, 14},
		{"flat rect", ToolRect, 100, 12}, // tall enough in x only
		{"tiny ellipse", ToolEllipse, 15, 15},
		{"short arrow", ToolArrow, 18, 10},
		{"short line", ToolLine, 10, 19},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ed := New(800, 600)
			ed.SetTool(tc.tool)
			ed.HandleMouse(press(10, 10))
			ed.HandleMouse(move(tc.x1, tc.y1))
			ed.HandleMouse(release(tc.x1, tc.y1))
			if n := len(ed.Annotations()); n != 0 {
				t.Errorf("expected silent discard, got %d annotations", n)
			}
			if ed.CanUndo() {
				t.Error("discarded draft must not push history")
			}
		})
	}
}

func TestEllipseGrowsFromMidpoint(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolEllipse)
	drag(ed, 20, 30, 60, 70)

	e := ed.Annotations()[0].(*annotation.Ellipse)
	if e.X != 40 || e.Y != 50 {
		t.Errorf("centre (%g, %g), want (40, 50)", e.X, e.Y)
	}
	if e.RX != 20 || e.RY != 20 {
		t.Errorf("radii (%g, %g), want (20, 20)", e.RX, e.RY)
	}
}

func TestBrushCollectsPoints(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolBrush)
	ed.HandleMouse(press(10, 10))
	ed.HandleMouse(move(15, 12))
	ed.HandleMouse(move(22, 18))
	ed.HandleMouse(release(22, 18))

	b := ed.Annotations()[0].(*annotation.Brush)
	if len(b.Points) < 3 {
		t.Fatalf("expected at least 3 points, got %d", len(b.Points))
	}
	// Points are relative to the anchor.
	if b.Points[0] != (geom.Point{}) {
		t.Errorf("first point %+v, want origin", b.Points[0])
	}
	if last := b.Points[len(b.Points)-1]; last != geom.Pt(12, 8) {
		t.Errorf("last point %+v, want {12 8}", last)
	}
}

func TestMarkerClicksIncrementCounter(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolMarker)
	ed.HandleMouse(press(10, 10))
	ed.HandleMouse(release(10, 10))
	ed.HandleMouse(press(50, 50))
	ed.HandleMouse(release(50, 50))

	anns := ed.Annotations()
	if len(anns) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(anns))
	}
	if v := anns[0].(*annotation.Marker).Value; v != 1 {
		t.Errorf("first marker value %d, want 1", v)
	}
	if v := anns[1].(*annotation.Marker).Value; v != 2 {
		t.Errorf("second marker value %d, want 2", v)
	}
	if ed.NextMarkerValue() != 3 {
		t.Errorf("next value %d, want 3", ed.NextMarkerValue())
	}

	ed.ResetMarkers()
	if ed.NextMarkerValue() != 1 {
		t.Error("ResetMarkers should rewind the counter")
	}
}

func TestMarqueeSelectsByOpenOverlap(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 50, 50)
	drag(ed, 100, 100, 150, 150)
	drag(ed, 300, 300, 350, 350)

	ed.SetTool(ToolSelect)
	// Marquee overlapping the first two only.
	drag(ed, 5, 5, 160, 160)

	if got := len(ed.Selection()); got != 2 {
		t.Fatalf("selected %d, want 2", got)
	}

	// A marquee that only touches an edge must not select.
	drag(ed, 400, 400, 500, 500)
	if len(ed.Selection()) != 0 {
		t.Error("empty marquee should clear the selection")
	}
	drag(ed, 350, 350, 380, 380) // touches third rect's corner exactly
	if len(ed.Selection()) != 0 {
		t.Error("edge-touching marquee must not select (open intersection)")
	}
}

func TestShiftMarqueeExtendsSelection(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 50, 50)
	drag(ed, 100, 100, 150, 150)

	ed.SetTool(ToolSelect)
	drag(ed, 5, 5, 60, 60)
	if len(ed.Selection()) != 1 {
		t.Fatalf("selected %d, want 1", len(ed.Selection()))
	}

	ed.HandleMouse(press(95, 95))
	ed.HandleMouse(move(160, 160))
	ed.HandleMouse(mouse.Event{X: 160, Y: 160, Button: mouse.ButtonLeft, Direction: mouse.DirRelease, Modifiers: key.ModShift})
	if len(ed.Selection()) != 2 {
		t.Errorf("selected %d after shift marquee, want 2", len(ed.Selection()))
	}
}

func TestClickSelectsTopMost(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 100, 100)
	drag(ed, 50, 50, 150, 150) // overlaps, later in stacking order

	ed.SetTool(ToolSelect)
	ed.HandleMouse(press(70, 70))
	ed.HandleMouse(release(70, 70))

	sel := ed.Selection()
	if len(sel) != 1 {
		t.Fatalf("selected %d, want 1", len(sel))
	}
	top := annotation.Base(ed.Annotations()[1]).ID
	if sel[0] != top {
		t.Error("click should select the top-most annotation")
	}
}

func TestDragMovesSelectionAndPushesOnce(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 100, 100)

	ed.SetTool(ToolSelect)
	drag(ed, 50, 50, 80, 90) // hit and drag by (30, 40)

	r := ed.Annotations()[0].(*annotation.Rect)
	if r.X != 40 || r.Y != 50 {
		t.Errorf("rect moved to (%g, %g), want (40, 50)", r.X, r.Y)
	}
}

func TestDragMagnifierKeepsSourceFixed(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolMagnifier)
	ed.HandleMouse(press(100, 100))
	ed.HandleMouse(release(100, 100))

	mag := ed.Annotations()[0].(*annotation.Magnifier)
	if mag.SourceX != 100 || mag.SourceY != 100 {
		t.Fatalf("source centre (%g, %g), want (100, 100)", mag.SourceX, mag.SourceY)
	}
	tx, ty := mag.X, mag.Y

	ed.SetTool(ToolSelect)
	drag(ed, tx, ty, tx+30, ty)

	if mag.X != tx+30 || mag.Y != ty {
		t.Errorf("target centre (%g, %g), want (%g, %g)", mag.X, mag.Y, tx+30, ty)
	}
	if mag.SourceX != 100 || mag.SourceY != 100 {
		t.Errorf("source centre moved to (%g, %g), must stay at (100, 100)", mag.SourceX, mag.SourceY)
	}
}

func TestCropDragCommit(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolCrop)
	drag(ed, 20, 20, 200, 150)

	mask := ed.CropMask()
	if mask == nil {
		t.Fatal("expected committed crop mask")
	}
	want := geom.RectFromPoints(geom.Pt(20, 20), geom.Pt(200, 150))
	if *mask != want {
		t.Errorf("mask %+v, want %+v", *mask, want)
	}
	if ed.CropArea() != nil {
		t.Error("live crop area should clear after commit")
	}
}

func TestCropClickClickGesture(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolCrop)
	// Sub-threshold drag arms the click-click gesture.
	ed.HandleMouse(press(20, 20))
	ed.HandleMouse(release(22, 23))
	if ed.CropMask() != nil {
		t.Fatal("sub-threshold release must not commit")
	}
	// Second click commits corner-to-corner.
	ed.HandleMouse(press(180, 140))
	if mask := ed.CropMask(); mask == nil {
		t.Fatal("second click should commit the crop")
	} else if *mask != geom.RectFromPoints(geom.Pt(20, 20), geom.Pt(180, 140)) {
		t.Errorf("mask %+v", *mask)
	}
}

func TestCropClickClickTinySecondClickDiscards(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolCrop)
	ed.HandleMouse(press(20, 20))
	ed.HandleMouse(release(21, 21))
	ed.HandleMouse(press(25, 25)) // second corner too close
	if ed.CropMask() != nil {
		t.Error("tiny click-click crop must discard silently")
	}
	if ed.CanUndo() {
		t.Error("discarded crop must not push history")
	}
}

func TestToolSwitchDisarmsCrop(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolCrop)
	ed.HandleMouse(press(20, 20))
	ed.HandleMouse(release(21, 21)) // arms the click-click gesture

	ed.SetTool(ToolRect)
	ed.SetTool(ToolCrop)

	// The first click after re-entering crop mode must start a fresh
	// gesture, not commit against the stale corner.
	ed.HandleMouse(press(180, 140))
	if ed.CropMask() != nil {
		t.Error("stale armed corner committed a crop across a tool switch")
	}
	if ed.InteractionState() != StateCropping {
		t.Errorf("state = %v, want cropping drag in progress", ed.InteractionState())
	}
}

func TestWheelZoomsWithoutSelection(t *testing.T) {
	ed := New(800, 600)
	before := ed.View()
	ed.HandleMouse(wheel(100, 100, true))
	after := ed.View()
	if after.Scale <= before.Scale {
		t.Errorf("scale %g should exceed %g after wheel up", after.Scale, before.Scale)
	}
	// Anchor invariance: the image point under the cursor must not move.
	pBefore := before.ToImage(geom.Pt(100, 100))
	pAfter := after.ToImage(geom.Pt(100, 100))
	if dist := pBefore.Dist(pAfter); dist > 1e-9 {
		t.Errorf("anchor drifted %g px", dist)
	}
}

func TestWheelAdjustsSelectedAnnotationOnly(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 100, 100)
	drag(ed, 200, 200, 300, 300)

	first := ed.Annotations()[0].(*annotation.Rect)
	second := ed.Annotations()[1].(*annotation.Rect)
	origWidth := first.StrokeWidth

	ed.Select(first.ID)
	ed.HandleMouse(wheel(50, 50, true))

	if first.StrokeWidth != origWidth+1 {
		t.Errorf("selected stroke %g, want %g", first.StrokeWidth, origWidth+1)
	}
	if second.StrokeWidth != origWidth {
		t.Error("unselected annotation must not change")
	}
	if ed.View().Scale != 1 {
		t.Error("wheel with a selection must not zoom")
	}
	if ed.Config().StrokeWidth != origWidth {
		t.Error("shared defaults must not change when adjusting an instance")
	}
}

func TestMiddleButtonPansAnyTool(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	ed.HandleMouse(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonMiddle, Direction: mouse.DirPress})
	ed.HandleMouse(move(130, 80))
	ed.HandleMouse(mouse.Event{X: 130, Y: 80, Button: mouse.ButtonMiddle, Direction: mouse.DirRelease})

	v := ed.View()
	if v.OffsetX != 30 || v.OffsetY != -20 {
		t.Errorf("offset (%g, %g), want (30, -20)", v.OffsetX, v.OffsetY)
	}
	if len(ed.Annotations()) != 0 {
		t.Error("middle-button pan must not draw")
	}
	if ed.Tool() != ToolRect {
		t.Error("pan must not switch tools")
	}
}

func TestRightClickSwitchesToSelect(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolBrush)
	ed.HandleMouse(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonRight, Direction: mouse.DirPress})
	if ed.Tool() != ToolSelect {
		t.Errorf("tool = %v, want select", ed.Tool())
	}
}

func TestDeleteSelectionViaKey(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 100, 100)
	ed.SelectAll()

	ed.HandleKey(key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress})
	if len(ed.Annotations()) != 0 {
		t.Error("delete key should remove the selection")
	}
	if !ed.Undo() {
		t.Fatal("deletion should be undoable")
	}
	if len(ed.Annotations()) != 1 {
		t.Error("undo should restore the deleted annotation")
	}
}

func TestUndoRedoClearSelection(t *testing.T) {
	ed := New(800, 600)
	ed.SetTool(ToolRect)
	drag(ed, 10, 10, 100, 100)
	drag(ed, 120, 120, 200, 200)
	ed.SelectAll()

	ed.Undo()
	if len(ed.Selection()) != 0 {
		t.Error("undo must clear the selection")
	}
	if len(ed.Annotations()) != 1 {
		t.Errorf("after undo: %d annotations, want 1", len(ed.Annotations()))
	}
	ed.SelectAll()
	ed.Redo()
	if len(ed.Selection()) != 0 {
		t.Error("redo must clear the selection")
	}
	if len(ed.Annotations()) != 2 {
		t.Errorf("after redo: %d annotations, want 2", len(ed.Annotations()))
	}
}

func TestGeometryListenerFires(t *testing.T) {
	calls := 0
	ed := New(800, 600, WithGeometryListener(func() { calls++ }))
	ed.SetTool(ToolMarker)
	ed.HandleMouse(press(10, 10))
	if calls == 0 {
		t.Error("listener should fire on mutation")
	}
}
