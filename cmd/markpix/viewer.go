package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/markpix/internal/actions"
	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/config"
	"github.com/example/markpix/internal/editor"
	"github.com/example/markpix/internal/effects"
	"github.com/example/markpix/internal/export"
	"github.com/example/markpix/internal/geom"
	"github.com/example/markpix/internal/notify"
	"github.com/example/markpix/internal/render"
)

var backdrop = color.RGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF}

type viewer struct {
	ed       *editor.Editor
	base     *image.RGBA
	cfg      *config.Config
	output   string
	notifier *notify.Notifier
	runner   *actions.Runner
	sched    *effects.Scheduler
}

// paintState is an isolated snapshot handed to the paint goroutine, so event
// handling never races the renderer.
type paintState struct {
	width, height int
	anns          []annotation.Annotation
	draft         annotation.Annotation
	selection     map[string]struct{}
	marquee       *geom.Rect
	cropArea      *geom.Rect
	view          geom.View
}

// Run executes the UI loop using shiny's driver.
func (v *viewer) Run() { driver.Main(v.main) }

func (v *viewer) main(s screen.Screen) {
	width := v.base.Bounds().Dx()
	height := v.base.Bounds().Dy()
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "MarkPix"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	repaint := func() { w.Send(paint.Event{}) }

	// Coalesce raw pointer moves: only the latest position matters per frame.
	var pendingMove *mouse.Event

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				v.sched.Cancel()
				return
			}

		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			repaint()

		case paint.Event:
			if pendingMove != nil {
				v.ed.HandleMouse(*pendingMove)
				pendingMove = nil
			}
			st := v.snapshot(width, height)
			// Frames go through the scheduler: a paint issued mid-drag
			// cancels the one in flight, and only the newest publishes.
			v.sched.Submit(func(ctx context.Context) (*image.RGBA, error) {
				return v.renderFrame(ctx, st)
			}, func(frame *image.RGBA) {
				if frame == nil {
					frame = effects.Placeholder(st.width, st.height, backdrop)
				}
				v.publish(s, w, frame)
			})

		case mouse.Event:
			if e.Direction == mouse.DirNone && e.Button == mouse.ButtonNone {
				pendingMove = &e
				repaint()
				continue
			}
			if pendingMove != nil {
				v.ed.HandleMouse(*pendingMove)
				pendingMove = nil
			}
			if v.ed.HandleMouse(e) {
				repaint()
			}

		case key.Event:
			if v.ed.HandleKey(e) {
				repaint()
				continue
			}
			if e.Direction != key.DirPress {
				continue
			}
			if v.handleShortcut(e) {
				repaint()
			}
			if e.Rune == 'q' && v.ed.EditingText() == "" {
				return
			}

		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (v *viewer) snapshot(width, height int) paintState {
	st := paintState{
		width:     width,
		height:    height,
		anns:      annotation.CloneAll(v.ed.Annotations()),
		view:      v.ed.View(),
		selection: make(map[string]struct{}),
	}
	if d := v.ed.Draft(); d != nil {
		st.draft = d.Clone()
	}
	for _, id := range v.ed.Selection() {
		st.selection[id] = struct{}{}
	}
	if m, ok := v.ed.Marquee(); ok {
		mc := m
		st.marquee = &mc
	}
	if c := v.ed.CropArea(); c != nil {
		cc := *c
		st.cropArea = &cc
	}
	return st
}

// renderFrame produces a complete window-sized frame from a snapshot. It
// checks ctx between the flatten and compose stages so a superseded frame
// stops early.
func (v *viewer) renderFrame(ctx context.Context, st paintState) (*image.RGBA, error) {
	flattened := render.Flatten(v.base, st.anns, render.Options{
		Scale:     st.view.Scale,
		Draft:     st.draft,
		Selection: st.selection,
		Marquee:   st.marquee,
		CropArea:  st.cropArea,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(backdrop), image.Point{}, draw.Src)

	fb := flattened.Bounds()
	dst := image.Rect(
		int(math.Round(st.view.OffsetX)),
		int(math.Round(st.view.OffsetY)),
		int(math.Round(st.view.OffsetX+float64(fb.Dx())*st.view.Scale)),
		int(math.Round(st.view.OffsetY+float64(fb.Dy())*st.view.Scale)),
	)
	xdraw.ApproxBiLinear.Scale(frame, dst, flattened, fb, draw.Src, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame, nil
}

func (v *viewer) publish(s screen.Screen, w screen.Window, frame *image.RGBA) {
	buf, err := s.NewBuffer(frame.Bounds().Size())
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer buf.Release()

	rgba := buf.RGBA()
	draw.Draw(rgba, rgba.Bounds(), frame, frame.Bounds().Min, draw.Src)
	w.Upload(image.Point{}, buf, rgba.Bounds())
	w.Publish()
}

func (v *viewer) handleShortcut(e key.Event) bool {
	if e.Modifiers&key.ModControl != 0 {
		switch e.Rune {
		case 'z':
			return v.ed.Undo()
		case 'y':
			return v.ed.Redo()
		case 's':
			v.save()
			return true
		case 'c':
			v.copy()
			return true
		}
		return false
	}

	switch e.Rune {
	case 'v':
		v.ed.SetTool(editor.ToolSelect)
	case ' ':
		v.ed.SetTool(editor.ToolPan)
	case 'c':
		v.ed.SetTool(editor.ToolCrop)
	case 'r':
		v.ed.SetTool(editor.ToolRect)
	case 'o':
		v.ed.SetTool(editor.ToolEllipse)
	case 'a':
		v.ed.SetTool(editor.ToolArrow)
	case 'l':
		v.ed.SetTool(editor.ToolLine)
	case 't':
		v.ed.SetTool(editor.ToolText)
	case 'b':
		v.ed.SetTool(editor.ToolBrush)
	case 'n':
		v.ed.SetTool(editor.ToolMarker)
	case 'x':
		v.ed.SetTool(editor.ToolMosaic)
	case 'g':
		v.ed.SetTool(editor.ToolMagnifier)
	case '0':
		v.ed.SetViewScale(1)
	default:
		if e.Rune >= '1' && e.Rune <= '9' {
			return v.runAction(int(e.Rune - '1'))
		}
		return false
	}
	return true
}

func (v *viewer) compose() *image.RGBA {
	return export.Compose(v.base, v.ed.Annotations(), export.Options{
		CropMask: v.ed.CropMask(),
		Shadow:   v.cfg.Shadow,
	})
}

func (v *viewer) save() {
	img := v.compose()
	pattern := v.cfg.OutputPattern
	if v.output != "" {
		pattern = v.output
	}
	path, err := export.Save(img, pattern, v.cfg.SaveDir, time.Now())
	if err != nil {
		log.Printf("save: %v", err)
		return
	}
	log.Printf("saved %s", path)
	v.notifier.Save(path)
}

func (v *viewer) copy() {
	img := v.compose()
	if err := export.CopyToClipboard(img); err != nil {
		log.Printf("copy: %v", err)
		return
	}
	log.Print("image copied to clipboard")
	v.notifier.Copy(img)
}

// runAction runs the idx-th configured action, by sorted name, against the
// composed image. Actions run off the event loop; their output is logged.
func (v *viewer) runAction(idx int) bool {
	names := v.runner.Names()
	sort.Strings(names)
	if idx < 0 || idx >= len(names) {
		return false
	}
	name := names[idx]
	img := v.compose()
	go func() {
		out, err := v.runner.Run(context.Background(), name, img)
		if err != nil {
			log.Printf("action %s: %v", name, err)
			return
		}
		if out != "" {
			log.Printf("action %s: %s", name, out)
		}
		v.notifier.Action(name)
	}()
	return true
}
