// Package timeline renders the thumbnail-backed timeline and turns
// pointer gestures into selection mutations.
package timeline

import (
	"math"

	"cliptrim/internal/selection"
)

// DragKind classifies an active drag.
type DragKind int

const (
	// DragMove slides the whole selection, duration unchanged.
	DragMove DragKind = iota
	// DragStart moves the start edge with the end edge pinned.
	DragStart
	// DragEnd moves the end edge with the start edge pinned.
	DragEnd
)

// DragSession is the bookkeeping for one pointer-down..pointer-up
// cycle. Created at pointer-down, destroyed at pointer-up, never kept
// across unrelated frames.
type DragSession struct {
	Kind          DragKind
	PointerStartX float64
	At            selection.Selection // selection when the drag began
	HasMoved      bool
}

// Handle zone and tap slop, in pixels. The handle zone converts to time
// units against the current width so hit testing stays usable at any
// zoom.
const (
	handleZonePx = 10
	tapSlopPx    = 3
)

// Seeker is the slice of the playback synchronizer the controller may
// command. It never reads the player clock directly.
type Seeker interface {
	SeekTo(seconds float64)
	Playing() bool
}

// Controller is the Idle/Dragging state machine over pointer events.
// While a drag is live the uncommitted candidate lives in pending; the
// committed selection in the model stays untouched so duration/cost
// displays elsewhere never see transient values.
type Controller struct {
	model *selection.Model
	seek  Seeker

	widthPx  float64
	session  *DragSession
	pending  *selection.Selection
	onCommit func(selection.Selection)
}

// NewController wires the state machine to the model and the playback
// seeker. onCommit fires after a real drag lands, with the committed
// selection; nil is allowed.
func NewController(model *selection.Model, seek Seeker, onCommit func(selection.Selection)) *Controller {
	return &Controller{model: model, seek: seek, onCommit: onCommit}
}

// SetWidth installs the timeline width used for pixel/time mapping.
// Called every layout pass.
func (c *Controller) SetWidth(px float64) {
	c.widthPx = px
}

// Pending returns the in-drag candidate selection, if any.
func (c *Controller) Pending() (selection.Selection, bool) {
	if c.pending == nil {
		return selection.Selection{}, false
	}
	return *c.pending, true
}

// Effective returns the selection the renderer should draw: pending
// while a drag is live, committed otherwise.
func (c *Controller) Effective() selection.Selection {
	if c.pending != nil {
		return *c.pending
	}
	return c.model.Selection()
}

// Dragging reports whether a drag session is live.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

func (c *Controller) timeAt(x float64) float64 {
	src := c.model.SourceDuration()
	if c.widthPx <= 0 || src <= 0 {
		return 0
	}
	t := x / c.widthPx * src
	if t < 0 {
		return 0
	}
	if t > src {
		return src
	}
	return t
}

// handleZone returns the hit tolerance around an edge, in seconds.
func (c *Controller) handleZone() float64 {
	if c.widthPx <= 0 {
		return 0
	}
	return handleZonePx / c.widthPx * c.model.SourceDuration()
}

// Down classifies the press position. Presses on an edge or inside the
// body open a drag session; a press outside the selection repositions
// the playhead immediately and stays Idle.
func (c *Controller) Down(x float64) {
	if c.widthPx <= 0 || c.model.SourceDuration() <= 0 {
		return
	}
	t := c.timeAt(x)
	sel := c.model.Selection()
	hz := c.handleZone()

	var kind DragKind
	switch {
	case math.Abs(t-sel.StartOffset) < hz:
		kind = DragStart
	case math.Abs(t-sel.End()) < hz:
		kind = DragEnd
	case t >= sel.StartOffset && t <= sel.End():
		kind = DragMove
	default:
		// A bare press outside the selection repositions playback and
		// never touches the selection.
		c.seek.SeekTo(t)
		return
	}
	c.session = &DragSession{Kind: kind, PointerStartX: x, At: sel}
}

// Move advances a live drag and refreshes the pending selection.
func (c *Controller) Move(x float64) {
	s := c.session
	if s == nil {
		return
	}
	if math.Abs(x-s.PointerStartX) > tapSlopPx {
		s.HasMoved = true
	}
	if !s.HasMoved {
		return
	}

	src := c.model.SourceDuration()
	dt := (x - s.PointerStartX) / c.widthPx * src
	cons := c.model.Constraints()

	var p selection.Selection
	switch s.Kind {
	case DragMove:
		start := clampf(s.At.StartOffset+dt, 0, src-s.At.Duration)
		p = selection.Selection{StartOffset: start, Duration: s.At.Duration}

	case DragStart:
		// End edge pinned: quantize the duration, then recompute the
		// start from it so the end truly stays fixed.
		end := s.At.End()
		dur := selection.Quantize(end-(s.At.StartOffset+dt), cons.Step)
		dur = clampf(dur, cons.Min, cons.Max)
		if dur > end {
			dur = selection.FloorTo(end, cons.Step)
			if dur < cons.Min {
				dur = cons.Min
			}
		}
		start := end - dur
		if start < 0 {
			start = 0
		}
		p = selection.Selection{StartOffset: start, Duration: dur}

	case DragEnd:
		// Symmetric: start pinned.
		start := s.At.StartOffset
		dur := selection.Quantize(s.At.End()+dt-start, cons.Step)
		dur = clampf(dur, cons.Min, cons.Max)
		if start+dur > src {
			dur = selection.FloorTo(src-start, cons.Step)
			if dur < cons.Min {
				dur = cons.Min
			}
		}
		p = selection.Selection{StartOffset: start, Duration: dur}
	}
	c.pending = &p
}

// Up ends the session. A tap (no movement) seeks to the release
// position exactly like an outside press; a real drag commits the
// pending selection and anchors playback at its start.
func (c *Controller) Up(x float64) {
	s := c.session
	c.session = nil
	if s == nil {
		return
	}

	if !s.HasMoved {
		c.pending = nil
		c.seek.SeekTo(c.timeAt(x))
		return
	}

	if c.pending != nil {
		committed := c.model.Set(*c.pending)
		c.pending = nil
		c.seek.SeekTo(committed.StartOffset)
		if c.onCommit != nil {
			c.onCommit(committed)
		}
	}
}

// Cancel abandons a live drag without committing.
func (c *Controller) Cancel() {
	c.session = nil
	c.pending = nil
}

func clampf(x, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
