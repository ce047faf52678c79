// Package editor owns the mutable editing state: the active tool and style
// defaults, the annotation list, the selection set, the view transform, the
// crop mask and the undo history. All mutation flows through Editor methods
// so a sequence of input events replays deterministically.
package editor

import (
	"image"
	"log"
	"sort"
	"time"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
	"github.com/example/markpix/internal/history"
)

// Tool identifies the active tool. Select, pan and crop are interaction
// modes; the rest create annotations of the matching kind.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPan
	ToolCrop
	ToolRect
	ToolEllipse
	ToolArrow
	ToolLine
	ToolText
	ToolBrush
	ToolMarker
	ToolMosaic
	ToolMagnifier
)

// kindOf maps drawing tools to their annotation kind. Interaction modes are
// absent on purpose; asking the factory for them is a bug.
var kindOf = map[Tool]annotation.Kind{
	ToolRect:      annotation.KindRect,
	ToolEllipse:   annotation.KindEllipse,
	ToolArrow:     annotation.KindArrow,
	ToolLine:      annotation.KindLine,
	ToolText:      annotation.KindText,
	ToolBrush:     annotation.KindBrush,
	ToolMarker:    annotation.KindMarker,
	ToolMosaic:    annotation.KindMosaic,
	ToolMagnifier: annotation.KindMagnifier,
}

// State names the pointer interaction in progress.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StatePanning
	StateMarqueeing
	StateCropping
	StateEditingText
)

// textCreateDebounce suppresses duplicate text annotations from one rapid
// double interaction.
const textCreateDebounce = 300 * time.Millisecond

// Editor is the explicitly-owned editing state aggregate.
type Editor struct {
	cfg  *annotation.ToolConfig
	tool Tool

	anns      []annotation.Annotation
	selection map[string]struct{}
	hist      *history.Stack
	view      geom.View

	baseW, baseH int

	state      State
	draft      annotation.Annotation
	dragStart  geom.Point // image space, gesture origin
	panLast    geom.Point // screen space
	moveIDs    []string   // selection being dragged
	moved      bool
	marquee    geom.Rect
	hasMarquee bool

	cropArea  *geom.Rect
	cropStart geom.Point
	cropArmed bool
	cropMask  *geom.Rect

	markerNext  int
	lastTextAt  time.Time
	editingID   string
	editingPrev string

	// onGeometryChanged fires synchronously after every mutating operation,
	// replacing the per-frame polling loop hosts would otherwise need to
	// track live geometry such as magnifier tangent lines.
	onGeometryChanged func()

	now func() time.Time
}

// Option configures an Editor at creation.
type Option func(*Editor)

// WithToolConfig sets the shared style defaults record.
func WithToolConfig(cfg *annotation.ToolConfig) Option {
	return func(ed *Editor) { ed.cfg = cfg }
}

// WithGeometryListener registers the geometry-changed callback.
func WithGeometryListener(fn func()) Option {
	return func(ed *Editor) { ed.onGeometryChanged = fn }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(fn func() time.Time) Option {
	return func(ed *Editor) { ed.now = fn }
}

// New creates an editor for a base image of the given pixel dimensions.
func New(baseW, baseH int, opts ...Option) *Editor {
	ed := &Editor{
		tool:       ToolSelect,
		selection:  map[string]struct{}{},
		hist:       history.New(),
		view:       geom.NewView(),
		baseW:      baseW,
		baseH:      baseH,
		markerNext: 1,
		now:        time.Now,
	}
	for _, o := range opts {
		o(ed)
	}
	if ed.cfg == nil {
		ed.cfg = annotation.DefaultToolConfig()
	}
	return ed
}

// Config returns the shared style defaults record.
func (ed *Editor) Config() *annotation.ToolConfig { return ed.cfg }

// Tool returns the active tool.
func (ed *Editor) Tool() Tool { return ed.tool }

// SetTool switches the active tool and aborts any gesture in progress,
// including an armed click-click crop.
func (ed *Editor) SetTool(t Tool) {
	if ed.state == StateEditingText {
		ed.CancelTextEdit()
	}
	ed.tool = t
	ed.state = StateIdle
	ed.draft = nil
	ed.hasMarquee = false
	ed.cropArmed = false
	ed.cropArea = nil
}

// InteractionState returns the pointer state machine's current state.
func (ed *Editor) InteractionState() State { return ed.state }

// View returns the current view transform.
func (ed *Editor) View() geom.View { return ed.view }

// SetViewScale sets the zoom directly, clamped to the allowed range.
func (ed *Editor) SetViewScale(s float64) {
	ed.view.Scale = geom.ClampScale(s)
}

// Annotations returns the live annotation sequence in stacking order. The
// slice is shared; callers that need an isolated copy should Clone entries.
func (ed *Editor) Annotations() []annotation.Annotation { return ed.anns }

// Draft returns the in-progress annotation during a drawing gesture, or nil.
func (ed *Editor) Draft() annotation.Annotation { return ed.draft }

// Marquee returns the live rubber-band rectangle, if one is being dragged.
func (ed *Editor) Marquee() (geom.Rect, bool) { return ed.marquee, ed.hasMarquee }

// CropArea returns the live, uncommitted crop selection, or nil.
func (ed *Editor) CropArea() *geom.Rect { return ed.cropArea }

// CropMask returns the committed crop region applied at export, or nil.
func (ed *Editor) CropMask() *geom.Rect { return ed.cropMask }

// CanUndo reports undo availability for collaborators such as a toolbar.
func (ed *Editor) CanUndo() bool { return ed.hist.CanUndo() }

// CanRedo reports redo availability.
func (ed *Editor) CanRedo() bool { return ed.hist.CanRedo() }

// Add appends an annotation and pushes a history entry.
func (ed *Editor) Add(a annotation.Annotation) {
	ed.anns = append(ed.anns, a)
	ed.push()
}

// AddImage appends a pasted-image annotation anchored at the given image
// point and pushes history. The pixel buffer is treated as immutable.
func (ed *Editor) AddImage(img *image.RGBA, at geom.Point) (annotation.Annotation, error) {
	a, err := annotation.New(annotation.KindImage, ed.cfg, at, annotation.WithPixels(img))
	if err != nil {
		return nil, err
	}
	ed.Add(a)
	return a, nil
}

// Delete removes the annotations with the given ids, drops them from the
// selection and pushes history. Unknown ids are ignored.
func (ed *Editor) Delete(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := ed.anns[:0]
	removed := false
	for _, a := range ed.anns {
		if _, ok := drop[annotation.Base(a).ID]; ok {
			delete(ed.selection, annotation.Base(a).ID)
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	ed.anns = kept
	if removed {
		ed.push()
	}
}

// DeleteSelection removes every selected annotation.
func (ed *Editor) DeleteSelection() {
	ed.Delete(ed.Selection()...)
}

// ClearAnnotations removes every annotation and the committed crop mask.
func (ed *Editor) ClearAnnotations() {
	if len(ed.anns) == 0 && ed.cropMask == nil {
		return
	}
	ed.anns = nil
	ed.cropMask = nil
	ed.selection = map[string]struct{}{}
	ed.push()
}

// Undo restores the previous history entry. The selection is cleared because
// restored annotation ids may not match the ids that were selected.
func (ed *Editor) Undo() bool {
	entry, ok := ed.hist.Undo()
	if !ok {
		return false
	}
	ed.restore(entry)
	return true
}

// Redo restores the next history entry and clears the selection.
func (ed *Editor) Redo() bool {
	entry, ok := ed.hist.Redo()
	if !ok {
		return false
	}
	ed.restore(entry)
	return true
}

func (ed *Editor) restore(entry history.Entry) {
	ed.anns = entry.Annotations
	ed.cropMask = entry.CropMask
	ed.selection = map[string]struct{}{}
	ed.state = StateIdle
	ed.draft = nil
	ed.notify()
}

// Selection returns the selected annotation ids in stable order.
func (ed *Editor) Selection() []string {
	out := make([]string, 0, len(ed.selection))
	for id := range ed.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Selected reports whether the id is in the selection set.
func (ed *Editor) Selected(id string) bool {
	_, ok := ed.selection[id]
	return ok
}

// ClearSelection empties the selection set.
func (ed *Editor) ClearSelection() {
	ed.selection = map[string]struct{}{}
}

// ResetMarkers rewinds the marker counter to 1.
func (ed *Editor) ResetMarkers() { ed.markerNext = 1 }

// NextMarkerValue returns the counter value the next marker will display.
func (ed *Editor) NextMarkerValue() int { return ed.markerNext }

// SetBaseImageSize replaces the base image dimensions. Loading a new base
// image resets the marker counter and the crop state; the annotation set and
// history are cleared without recording an entry.
func (ed *Editor) SetBaseImageSize(w, h int) {
	ed.baseW, ed.baseH = w, h
	ed.markerNext = 1
	ed.anns = nil
	ed.cropArea = nil
	ed.cropMask = nil
	ed.selection = map[string]struct{}{}
	ed.hist.Clear()
	ed.view = geom.NewView()
	ed.notify()
}

// BaseSize returns the base image dimensions in pixels.
func (ed *Editor) BaseSize() (int, int) { return ed.baseW, ed.baseH }

func (ed *Editor) byID(id string) annotation.Annotation {
	for _, a := range ed.anns {
		if annotation.Base(a).ID == id {
			return a
		}
	}
	return nil
}

// push snapshots the current annotations plus crop mask.
func (ed *Editor) push() {
	ed.hist.Push(ed.anns, ed.cropMask)
	ed.notify()
}

func (ed *Editor) notify() {
	if ed.onGeometryChanged != nil {
		ed.onGeometryChanged()
	}
}

// BeginTextEdit enters the text-editing sub-state for an existing text
// annotation. How raw text input is captured is the host's concern; the
// editor only tracks enter -> new string -> commit or discard.
func (ed *Editor) BeginTextEdit(id string) bool {
	a := ed.byID(id)
	t, ok := a.(*annotation.Text)
	if !ok {
		return false
	}
	ed.state = StateEditingText
	ed.editingID = id
	ed.editingPrev = t.Content
	return true
}

// EditingText returns the id under edit, or "" when not editing.
func (ed *Editor) EditingText() string {
	if ed.state != StateEditingText {
		return ""
	}
	return ed.editingID
}

// SetEditingContent replaces the live content of the text under edit.
func (ed *Editor) SetEditingContent(s string) {
	if t, ok := ed.byID(ed.editingID).(*annotation.Text); ok && ed.state == StateEditingText {
		t.Content = s
		ed.notify()
	}
}

// CommitTextEdit leaves the editing sub-state. The edit session is the
// gesture: history is pushed only here, and only when the text ends up
// non-empty and different from where the session started. A session that
// ends with empty content discards the annotation silently, like any other
// sub-threshold draft.
func (ed *Editor) CommitTextEdit() {
	if ed.state != StateEditingText {
		return
	}
	id := ed.editingID
	ed.state = StateIdle
	ed.editingID = ""
	t, ok := ed.byID(id).(*annotation.Text)
	if !ok {
		return
	}
	if t.Content == "" {
		ed.removeSilently(id)
		if ed.editingPrev != "" {
			// An existing annotation was emptied out: that is a deletion.
			ed.push()
		}
		return
	}
	if t.Content != ed.editingPrev {
		ed.push()
	}
}

// CancelTextEdit restores the content from before the edit session. A text
// annotation that never had content is removed without touching history.
func (ed *Editor) CancelTextEdit() {
	if ed.state != StateEditingText {
		return
	}
	id := ed.editingID
	prev := ed.editingPrev
	ed.state = StateIdle
	ed.editingID = ""
	t, ok := ed.byID(id).(*annotation.Text)
	if !ok {
		return
	}
	if prev == "" {
		ed.removeSilently(id)
		ed.notify()
		return
	}
	t.Content = prev
	ed.notify()
}

func (ed *Editor) removeSilently(id string) {
	kept := ed.anns[:0]
	for _, a := range ed.anns {
		if annotation.Base(a).ID == id {
			delete(ed.selection, id)
			continue
		}
		kept = append(kept, a)
	}
	ed.anns = kept
}

// must is used for factory calls with kinds the kindOf table guarantees are
// creatable; a failure here is a programming error.
func must(a annotation.Annotation, err error) annotation.Annotation {
	if err != nil {
		log.Panicf("editor: %v", err)
	}
	return a
}
