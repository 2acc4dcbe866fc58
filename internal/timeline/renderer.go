package timeline

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"cliptrim/internal/selection"
)

// Palette holds the timeline colors.
type Palette struct {
	TrackStart      color.NRGBA
	TrackEnd        color.NRGBA
	SelectionFill   color.NRGBA
	SelectionBorder color.NRGBA
	Handle          color.NRGBA
	Playhead        color.NRGBA
	PlayheadActive  color.NRGBA

	// DimOpacity is the opacity of the strip outside the selection.
	DimOpacity float32
}

// DefaultPalette returns the stock dark palette.
func DefaultPalette() Palette {
	return Palette{
		TrackStart:      color.NRGBA{R: 0x2C, G: 0x2C, B: 0x34, A: 0xFF},
		TrackEnd:        color.NRGBA{R: 0x3A, G: 0x3A, B: 0x46, A: 0xFF},
		SelectionFill:   color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0x30},
		SelectionBorder: color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0xFF},
		Handle:          color.NRGBA{R: 0xF5, G: 0xF5, B: 0xF7, A: 0xFF},
		Playhead:        color.NRGBA{R: 0xF5, G: 0xF5, B: 0xF7, A: 0xB0},
		PlayheadActive:  color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		DimOpacity:      0.35,
	}
}

// Frame is one render pass worth of input. The renderer is a pure
// function of it: committed or pending values arrive pre-chosen in
// Effective and nothing here mutates state.
type Frame struct {
	Size           image.Point
	SourceDuration float64
	Effective      selection.Selection
	Playhead       float64
	Playing        bool

	// Strip is the uploaded thumbnail sequence; empty means the
	// stripless fallback presentation.
	Strip []paint.ImageOp
}

const (
	borderWidth   = 2
	playheadWidth = 2
	capSize       = 6
	handleWidth   = 4
)

// Render draws the timeline into ops.
func Render(ops *op.Ops, pal Palette, f Frame) {
	if f.Size.X <= 0 || f.Size.Y <= 0 || f.SourceDuration <= 0 {
		return
	}

	selRect := image.Rect(
		timeToX(f.Effective.StartOffset, f),
		0,
		timeToX(f.Effective.End(), f),
		f.Size.Y,
	)

	if len(f.Strip) > 0 {
		drawStrip(ops, f, pal.DimOpacity, image.Rectangle{Max: f.Size})
		// Redraw the same strip at full opacity clipped to the
		// selection: dim outside, bright inside, one data structure.
		drawStrip(ops, f, 1, selRect)
	} else {
		drawGradientTrack(ops, pal, f.Size)
		paint.FillShape(ops, pal.SelectionFill, clip.Rect(selRect).Op())
		drawHandles(ops, pal, selRect)
	}

	paint.FillShape(ops, pal.SelectionBorder,
		clip.Stroke{Path: clip.Rect(selRect).Path(), Width: borderWidth}.Op())

	drawPlayhead(ops, pal, f)
}

func timeToX(t float64, f Frame) int {
	x := t / f.SourceDuration * float64(f.Size.X)
	if x < 0 {
		x = 0
	}
	if x > float64(f.Size.X) {
		x = float64(f.Size.X)
	}
	return int(x + 0.5)
}

// drawStrip paints every thumbnail stretched into an equal slot,
// clipped to bounds, at the given opacity.
func drawStrip(ops *op.Ops, f Frame, opacity float32, bounds image.Rectangle) {
	defer clip.Rect(bounds).Push(ops).Pop()
	if opacity < 1 {
		defer paint.PushOpacity(ops, opacity).Pop()
	}

	count := len(f.Strip)
	slotW := float32(f.Size.X) / float32(count)
	for i, img := range f.Strip {
		sz := img.Size()
		if sz.X <= 0 || sz.Y <= 0 {
			continue
		}
		x := float32(i) * slotW
		slot := image.Rect(int(x), 0, int(x+slotW+0.5), f.Size.Y)

		stack := clip.Rect(slot).Push(ops)
		scale := f32.Pt(slotW/float32(sz.X), float32(f.Size.Y)/float32(sz.Y))
		tr := op.Affine(f32.Affine2D{}.
			Scale(f32.Point{}, scale).
			Offset(f32.Pt(x, 0))).Push(ops)
		img.Add(ops)
		paint.PaintOp{}.Add(ops)
		tr.Pop()
		stack.Pop()
	}
}

// drawGradientTrack is the stripless fallback bar.
func drawGradientTrack(ops *op.Ops, pal Palette, size image.Point) {
	defer clip.Rect(image.Rectangle{Max: size}).Push(ops).Pop()
	paint.LinearGradientOp{
		Stop1:  f32.Pt(0, 0),
		Stop2:  f32.Pt(float32(size.X), 0),
		Color1: pal.TrackStart,
		Color2: pal.TrackEnd,
	}.Add(ops)
	paint.PaintOp{}.Add(ops)
}

// drawHandles marks the draggable edges explicitly; with thumbnails the
// bright/dim contrast already communicates them.
func drawHandles(ops *op.Ops, pal Palette, selRect image.Rectangle) {
	left := image.Rect(selRect.Min.X, 0, selRect.Min.X+handleWidth, selRect.Max.Y)
	right := image.Rect(selRect.Max.X-handleWidth, 0, selRect.Max.X, selRect.Max.Y)
	paint.FillShape(ops, pal.Handle, clip.Rect(left).Op())
	paint.FillShape(ops, pal.Handle, clip.Rect(right).Op())
}

// drawPlayhead strokes the vertical position line with a small
// triangular cap, brighter while playing.
func drawPlayhead(ops *op.Ops, pal Palette, f Frame) {
	x := timeToX(f.Playhead, f)
	col := pal.Playhead
	if f.Playing {
		col = pal.PlayheadActive
	}

	line := image.Rect(x-playheadWidth/2, 0, x+playheadWidth/2+playheadWidth%2, f.Size.Y)
	paint.FillShape(ops, col, clip.Rect(line).Op())

	var tri clip.Path
	tri.Begin(ops)
	tri.MoveTo(f32.Pt(float32(x-capSize), 0))
	tri.LineTo(f32.Pt(float32(x+capSize), 0))
	tri.LineTo(f32.Pt(float32(x), float32(capSize)))
	tri.Close()
	paint.FillShape(ops, col, clip.Outline{Path: tri.End()}.Op())
}
