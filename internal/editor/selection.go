package editor

import (
	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
)

// hitTest returns the top-most visible annotation whose bounding box contains
// the image-space point, or nil. Stacking order is list order, so the scan
// runs back to front.
func (ed *Editor) hitTest(p geom.Point) annotation.Annotation {
	for i := len(ed.anns) - 1; i >= 0; i-- {
		a := ed.anns[i]
		if !annotation.Base(a).Visible {
			continue
		}
		if a.Bounds().Contains(p) {
			return a
		}
	}
	return nil
}

// MarqueeHits returns the ids of visible annotations whose bounding boxes
// overlap the marquee rectangle, in stacking order. Overlap is open: touching
// edges don't select, and the test is symmetric in its operands.
func (ed *Editor) MarqueeHits(r geom.Rect) []string {
	var ids []string
	for _, a := range ed.anns {
		if !annotation.Base(a).Visible {
			continue
		}
		if a.Bounds().Overlaps(r) {
			ids = append(ids, annotation.Base(a).ID)
		}
	}
	return ids
}

// SelectAll selects every visible annotation.
func (ed *Editor) SelectAll() {
	ed.selection = map[string]struct{}{}
	for _, a := range ed.anns {
		c := annotation.Base(a)
		if c.Visible {
			ed.selection[c.ID] = struct{}{}
		}
	}
}

// Select replaces the selection with the given ids. Unknown ids are dropped.
func (ed *Editor) Select(ids ...string) {
	ed.selection = map[string]struct{}{}
	for _, id := range ids {
		if ed.byID(id) != nil {
			ed.selection[id] = struct{}{}
		}
	}
}

// SelectionBounds returns the union bounding box of the selection. ok is
// false when nothing is selected.
func (ed *Editor) SelectionBounds() (r geom.Rect, ok bool) {
	for id := range ed.selection {
		a := ed.byID(id)
		if a == nil {
			continue
		}
		b := a.Bounds()
		if !ok {
			r, ok = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, ok
}
