package editor

import (
	"math"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
)

// Minimum gesture thresholds. Drafts below them are discarded silently: the
// user didn't really mean to draw that.
const (
	minRectSide   = 5.0
	minEllipseRad = 3.0
	minLineLen    = 10.0
	minBrushPts   = 3
	minCropSide   = 10.0
)

const (
	wheelZoomStep   = 1.1
	strokeWheelStep = 1.0
	fontWheelStep   = 2.0
	markerWheelStep = 2.0
	imageWheelStep  = 0.05
)

// HandleMouse feeds one pointer event through the state machine. Event
// coordinates are device (screen) space; conversion to image space happens
// here through the view transform. The return value reports whether visible
// state changed. Hosts are expected to coalesce raw move events to the
// latest position per frame before calling; the machine itself treats each
// move as the current position and keeps no backlog.
func (ed *Editor) HandleMouse(e mouse.Event) bool {
	screen := geom.Pt(float64(e.X), float64(e.Y))
	img := ed.view.ToImage(screen)

	if e.Direction == mouse.DirStep {
		switch e.Button {
		case mouse.ButtonWheelUp:
			return ed.handleWheel(screen, 1)
		case mouse.ButtonWheelDown:
			return ed.handleWheel(screen, -1)
		}
		return false
	}

	// Right-click force-switches back to the select tool, except while a
	// text edit session is active.
	if e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress {
		if ed.state == StateEditingText {
			return false
		}
		ed.SetTool(ToolSelect)
		return true
	}

	// Middle-button pans regardless of the active tool.
	if e.Button == mouse.ButtonMiddle {
		switch e.Direction {
		case mouse.DirPress:
			ed.state = StatePanning
			ed.panLast = screen
			return true
		case mouse.DirRelease:
			if ed.state == StatePanning {
				ed.state = StateIdle
				return true
			}
		}
		return false
	}

	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		return ed.pointerDown(screen, img, e.Modifiers)
	case mouse.DirNone:
		return ed.pointerMove(screen, img)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		return ed.pointerUp(img, e.Modifiers)
	}
	return false
}

func (ed *Editor) pointerDown(screen, img geom.Point, mods key.Modifiers) bool {
	if ed.state == StateEditingText {
		ed.CommitTextEdit()
	}

	switch ed.tool {
	case ToolPan:
		ed.state = StatePanning
		ed.panLast = screen
		return true

	case ToolSelect:
		if hit := ed.hitTest(img); hit != nil {
			id := annotation.Base(hit).ID
			if mods&key.ModShift != 0 {
				ed.toggleSelect(id)
			} else if !ed.Selected(id) {
				ed.selection = map[string]struct{}{id: {}}
			}
			ed.beginMove(img)
			return true
		}
		ed.state = StateMarqueeing
		ed.dragStart = img
		ed.marquee = geom.Rect{Min: img, Max: img}
		ed.hasMarquee = true
		return true

	case ToolCrop:
		if ed.cropArmed {
			// Second click of the click-click gesture.
			ed.commitCrop(geom.RectFromPoints(ed.cropStart, img))
			ed.cropArmed = false
			return true
		}
		ed.state = StateCropping
		ed.cropStart = img
		r := geom.Rect{Min: img, Max: img}
		ed.cropArea = &r
		return true

	case ToolText:
		return ed.textDown(img)

	case ToolMarker:
		m := must(annotation.New(annotation.KindMarker, ed.cfg, img,
			annotation.WithMarkerValue(ed.markerNext)))
		ed.markerNext++
		ed.Add(m)
		return true

	case ToolMagnifier:
		a := must(annotation.New(annotation.KindMagnifier, ed.cfg, img))
		mag := a.(*annotation.Magnifier)
		// Offset the target circle so the zoomed view doesn't cover the
		// region it magnifies.
		mag.X += mag.TargetRadius * 1.5
		mag.Y += mag.TargetRadius * 1.5
		ed.Add(a)
		return true

	case ToolRect, ToolEllipse, ToolArrow, ToolLine, ToolBrush, ToolMosaic:
		ed.draft = must(annotation.New(kindOf[ed.tool], ed.cfg, img))
		ed.dragStart = img
		ed.state = StateDrawing
		return true
	}
	return false
}

func (ed *Editor) pointerMove(screen, img geom.Point) bool {
	switch ed.state {
	case StatePanning:
		ed.view.Pan(screen.X-ed.panLast.X, screen.Y-ed.panLast.Y)
		ed.panLast = screen
		return true
	case StateMarqueeing:
		ed.marquee = geom.RectFromPoints(ed.dragStart, img)
		return true
	case StateCropping:
		r := geom.RectFromPoints(ed.cropStart, img)
		ed.cropArea = &r
		return true
	case StateDrawing:
		ed.updateDraft(img)
		ed.notify()
		return true
	case StateIdle:
		if len(ed.moveIDs) > 0 {
			ed.dragSelection(img)
			return true
		}
	}
	return false
}

func (ed *Editor) pointerUp(img geom.Point, mods key.Modifiers) bool {
	switch ed.state {
	case StatePanning:
		ed.state = StateIdle
		return true

	case StateMarqueeing:
		ed.state = StateIdle
		ed.hasMarquee = false
		hits := ed.MarqueeHits(geom.RectFromPoints(ed.dragStart, img))
		if mods&key.ModShift != 0 {
			for _, id := range hits {
				ed.selection[id] = struct{}{}
			}
		} else {
			ed.selection = map[string]struct{}{}
			for _, id := range hits {
				ed.selection[id] = struct{}{}
			}
		}
		return true

	case StateCropping:
		ed.state = StateIdle
		r := geom.RectFromPoints(ed.cropStart, img)
		if r.Dx() >= minCropSide && r.Dy() >= minCropSide {
			ed.commitCrop(r)
		} else {
			// Arm the click-click gesture: the press point becomes the
			// first corner, the next click commits.
			ed.cropArmed = true
			ed.cropArea = nil
		}
		return true

	case StateDrawing:
		ed.updateDraft(img)
		draft := ed.draft
		ed.draft = nil
		ed.state = StateIdle
		if draftValid(draft) {
			ed.anns = append(ed.anns, draft)
			ed.push()
		}
		return true

	case StateIdle:
		if ed.moveIDs != nil {
			moved := ed.moved
			ed.moveIDs = nil
			ed.moved = false
			if moved {
				ed.push()
			}
			return moved
		}
	}
	return false
}

func (ed *Editor) textDown(img geom.Point) bool {
	if hit := ed.hitTest(img); hit != nil {
		if t, ok := hit.(*annotation.Text); ok {
			return ed.BeginTextEdit(t.ID)
		}
	}
	now := ed.now()
	if now.Sub(ed.lastTextAt) < textCreateDebounce {
		return false
	}
	ed.lastTextAt = now
	a := must(annotation.New(annotation.KindText, ed.cfg, img))
	// The edit session is the gesture; history is pushed on commit.
	ed.anns = append(ed.anns, a)
	ed.BeginTextEdit(annotation.Base(a).ID)
	return true
}

func (ed *Editor) beginMove(img geom.Point) {
	ids := ed.Selection()
	movable := ids[:0]
	for _, id := range ids {
		if a := ed.byID(id); a != nil && !annotation.Base(a).Locked {
			movable = append(movable, id)
		}
	}
	ed.moveIDs = movable
	ed.moved = false
	ed.dragStart = img
}

func (ed *Editor) dragSelection(img geom.Point) {
	dx := img.X - ed.dragStart.X
	dy := img.Y - ed.dragStart.Y
	if dx == 0 && dy == 0 {
		return
	}
	ed.dragStart = img
	ed.moved = true
	for _, id := range ed.moveIDs {
		a := ed.byID(id)
		if a == nil {
			continue
		}
		// MoveBy shifts only the anchor. For a magnifier that is the target
		// circle; SourceX/SourceY are absolute and stay where they are, so
		// dragging the zoomed view never moves the region it magnifies.
		annotation.Base(a).MoveBy(dx, dy)
	}
	ed.notify()
}

func (ed *Editor) updateDraft(img geom.Point) {
	start := ed.dragStart
	switch d := ed.draft.(type) {
	case *annotation.Rect:
		r := geom.RectFromPoints(start, img)
		d.X, d.Y = r.Min.X, r.Min.Y
		d.W, d.H = r.Dx(), r.Dy()
	case *annotation.Mosaic:
		r := geom.RectFromPoints(start, img)
		d.X, d.Y = r.Min.X, r.Min.Y
		d.W, d.H = r.Dx(), r.Dy()
	case *annotation.Ellipse:
		d.X = (start.X + img.X) / 2
		d.Y = (start.Y + img.Y) / 2
		d.RX = math.Abs(img.X-start.X) / 2
		d.RY = math.Abs(img.Y-start.Y) / 2
	case *annotation.Arrow:
		d.Points[1] = img.Sub(start)
	case *annotation.Line:
		d.Points[1] = img.Sub(start)
	case *annotation.Brush:
		rel := img.Sub(start)
		last := d.Points[len(d.Points)-1]
		if rel != last {
			d.Points = append(d.Points, rel)
		}
	}
}

func draftValid(a annotation.Annotation) bool {
	switch d := a.(type) {
	case *annotation.Rect:
		return d.W > minRectSide && d.H > minRectSide
	case *annotation.Mosaic:
		return d.W > minRectSide && d.H > minRectSide
	case *annotation.Ellipse:
		return d.RX > minEllipseRad && d.RY > minEllipseRad
	case *annotation.Arrow:
		return d.Length() > minLineLen
	case *annotation.Line:
		return d.Length() > minLineLen
	case *annotation.Brush:
		return len(d.Points) >= minBrushPts
	}
	return a != nil
}

func (ed *Editor) commitCrop(r geom.Rect) {
	ed.cropArea = nil
	if r.Dx() < minCropSide || r.Dy() < minCropSide {
		return
	}
	ed.cropMask = &r
	ed.push()
}

func (ed *Editor) toggleSelect(id string) {
	if _, ok := ed.selection[id]; ok {
		delete(ed.selection, id)
	} else {
		ed.selection[id] = struct{}{}
	}
}

// handleWheel adjusts a type-appropriate property of the selection when one
// exists, otherwise zooms the view about the pointer. Only the selected
// instances change; the shared style defaults are left alone.
func (ed *Editor) handleWheel(screen geom.Point, notches float64) bool {
	if len(ed.selection) == 0 {
		factor := math.Pow(wheelZoomStep, notches)
		ed.view.ZoomAt(screen, factor)
		return true
	}
	changed := false
	for _, id := range ed.Selection() {
		a := ed.byID(id)
		if a == nil || annotation.Base(a).Locked {
			continue
		}
		switch v := a.(type) {
		case *annotation.Rect:
			v.StrokeWidth = math.Max(1, v.StrokeWidth+notches*strokeWheelStep)
		case *annotation.Ellipse:
			v.StrokeWidth = math.Max(1, v.StrokeWidth+notches*strokeWheelStep)
		case *annotation.Arrow:
			v.StrokeWidth = math.Max(1, v.StrokeWidth+notches*strokeWheelStep)
		case *annotation.Line:
			v.StrokeWidth = math.Max(1, v.StrokeWidth+notches*strokeWheelStep)
		case *annotation.Brush:
			v.StrokeWidth = math.Max(1, v.StrokeWidth+notches*strokeWheelStep)
		case *annotation.Text:
			v.FontSize = math.Max(4, v.FontSize+notches*fontWheelStep)
		case *annotation.Marker:
			v.Size = math.Max(4, v.Size+notches*markerWheelStep)
		case *annotation.Mosaic:
			v.Radius += int(notches)
			if v.Radius < 2 {
				v.Radius = 2
			}
		case *annotation.Image:
			f := 1 + notches*imageWheelStep
			if f > 0 {
				v.W *= f
				v.H *= f
			}
		case *annotation.Magnifier:
			v.Zoom = math.Max(1, v.Zoom+notches*0.1)
		}
		changed = true
	}
	if changed {
		ed.push()
	}
	return changed
}

// HandleKey routes key events. While a text edit session is active, printable
// runes append to the content, backspace trims, enter commits and escape
// cancels. Outside of text editing, delete removes the selection and escape
// aborts a pending crop.
func (ed *Editor) HandleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	if ed.state == StateEditingText {
		t, ok := ed.byID(ed.editingID).(*annotation.Text)
		if !ok {
			ed.state = StateIdle
			return false
		}
		switch e.Code {
		case key.CodeReturnEnter:
			ed.CommitTextEdit()
			return true
		case key.CodeEscape:
			ed.CancelTextEdit()
			return true
		case key.CodeDeleteBackspace:
			if len(t.Content) > 0 {
				runes := []rune(t.Content)
				ed.SetEditingContent(string(runes[:len(runes)-1]))
				return true
			}
			return false
		}
		if e.Rune > 0 {
			ed.SetEditingContent(t.Content + string(e.Rune))
			return true
		}
		return false
	}

	switch e.Code {
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		if len(ed.selection) > 0 {
			ed.DeleteSelection()
			return true
		}
	case key.CodeEscape:
		if ed.cropArmed || ed.cropArea != nil {
			ed.cropArmed = false
			ed.cropArea = nil
			ed.state = StateIdle
			return true
		}
		if len(ed.selection) > 0 {
			ed.ClearSelection()
			return true
		}
	}
	return false
}
