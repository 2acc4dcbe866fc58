package timeline

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"

	"cliptrim/internal/player"
	"cliptrim/internal/selection"
	"cliptrim/internal/thumbs"
)

// Widget is the interactive trimmer timeline. It owns the drag
// controller and the uploaded strip textures; the selection model and
// the playback synchronizer are shared with the surrounding screen.
type Widget struct {
	model *selection.Model
	sync  *player.Synchronizer
	ctrl  *Controller

	palette Palette
	height  unit.Dp
	strip   []paint.ImageOp
}

// NewWidget wires the timeline to the model and synchronizer. onCommit
// fires after a drag lands, with the committed selection, after the
// playback loop has been re-anchored; nil is allowed.
func NewWidget(model *selection.Model, sync *player.Synchronizer, onCommit func(selection.Selection)) *Widget {
	w := &Widget{
		model:   model,
		sync:    sync,
		palette: DefaultPalette(),
		height:  unit.Dp(64),
	}
	w.ctrl = NewController(model, sync, func(sel selection.Selection) {
		sync.SetLoop(sel.StartOffset, sel.Duration)
		if onCommit != nil {
			onCommit(sel)
		}
	})
	return w
}

// SetPalette overrides the default colors.
func (w *Widget) SetPalette(p Palette) {
	w.palette = p
}

// SetStrip uploads the thumbnail strip, or clears it for the stripless
// fallback. Old textures are dropped for the GC.
func (w *Widget) SetStrip(s *thumbs.Strip) {
	w.strip = nil
	if s == nil {
		return
	}
	for _, img := range s.Images {
		w.strip = append(w.strip, paint.NewImageOp(img))
	}
}

// ApplyModel re-anchors the playback loop to the committed selection.
// Call after programmatic selection changes (split toggles, slider
// input).
func (w *Widget) ApplyModel() {
	sel := w.model.Selection()
	w.sync.SetLoop(sel.StartOffset, sel.Duration)
}

// Layout processes pointer input and draws one frame.
func (w *Widget) Layout(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(w.height))
	w.ctrl.SetWidth(float64(size.X))

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, w)
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: w,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			w.ctrl.Down(float64(pe.Position.X))
		case pointer.Drag:
			w.ctrl.Move(float64(pe.Position.X))
		case pointer.Release:
			w.ctrl.Up(float64(pe.Position.X))
		case pointer.Cancel:
			w.ctrl.Cancel()
		}
	}

	playhead := w.sync.Tick()
	if w.sync.Playing() {
		gtx.Execute(op.InvalidateCmd{})
	}

	Render(gtx.Ops, w.palette, Frame{
		Size:           size,
		SourceDuration: w.model.SourceDuration(),
		Effective:      w.ctrl.Effective(),
		Playhead:       playhead,
		Playing:        w.sync.Playing(),
		Strip:          w.strip,
	})

	return layout.Dimensions{Size: size}
}
