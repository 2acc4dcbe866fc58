package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptrim/internal/selection"
)

type fakeSeeker struct {
	seeks   []float64
	playing bool
}

func (f *fakeSeeker) SeekTo(seconds float64) {
	f.seeks = append(f.seeks, seconds)
}

func (f *fakeSeeker) Playing() bool {
	return f.playing
}

// 20s source on a 1000px timeline: 1px = 0.02s, handle zone = 0.2s.
func newTestController(t *testing.T) (*Controller, *selection.Model, *fakeSeeker) {
	t.Helper()
	m := selection.NewModel(selection.DefaultPolicy())
	m.SetSource(20.0)
	m.Set(selection.Selection{StartOffset: 5, Duration: 5}) // [5, 10)
	seek := &fakeSeeker{}
	c := NewController(m, seek, nil)
	c.SetWidth(1000)
	return c, m, seek
}

func xFor(seconds float64) float64 {
	return seconds / 20.0 * 1000.0
}

func TestTapOutsideSeeksOnly(t *testing.T) {
	c, m, seek := newTestController(t)
	before := m.Selection()

	c.Down(xFor(15)) // outside [5, 10)
	assert.False(t, c.Dragging())
	require.Len(t, seek.seeks, 1)
	assert.InDelta(t, 15.0, seek.seeks[0], 1e-9)
	assert.Equal(t, before, m.Selection())
}

func TestTapInsideSeeksWithoutResize(t *testing.T) {
	c, m, seek := newTestController(t)
	before := m.Selection()

	c.Down(xFor(7))
	require.True(t, c.Dragging())
	c.Move(xFor(7) + 1) // under the tap slop
	c.Up(xFor(7) + 1)

	assert.Equal(t, before, m.Selection(), "a tap never mutates the selection")
	require.Len(t, seek.seeks, 1)
	assert.InDelta(t, 7.02, seek.seeks[0], 1e-6)
}

func TestDragBodyMovesWithoutResizing(t *testing.T) {
	c, m, seek := newTestController(t)

	c.Down(xFor(7))
	c.Move(xFor(9)) // +2s
	p, ok := c.Pending()
	require.True(t, ok)
	assert.InDelta(t, 7.0, p.StartOffset, 1e-9)
	assert.InDelta(t, 5.0, p.Duration, 1e-9)

	c.Up(xFor(9))
	sel := m.Selection()
	assert.InDelta(t, 7.0, sel.StartOffset, 1e-9)
	assert.InDelta(t, 5.0, sel.Duration, 1e-9)
	require.NotEmpty(t, seek.seeks)
	assert.InDelta(t, 7.0, seek.seeks[len(seek.seeks)-1], 1e-9)
}

func TestDragMoveClampsAtSourceEnd(t *testing.T) {
	c, m, _ := newTestController(t)

	c.Down(xFor(7))
	c.Move(xFor(19)) // would push end past the source
	c.Up(xFor(19))

	sel := m.Selection()
	assert.InDelta(t, 15.0, sel.StartOffset, 1e-9)
	assert.InDelta(t, 5.0, sel.Duration, 1e-9)
}

func TestDragStartPinsEnd(t *testing.T) {
	c, m, _ := newTestController(t)
	endBefore := m.Selection().End()

	c.Down(xFor(5))    // on the start handle
	c.Move(xFor(6.63)) // drag right by ~1.63s
	c.Up(xFor(6.63))

	sel := m.Selection()
	assert.InDelta(t, endBefore, sel.End(), selection.StepTolerance,
		"start-edge drags must preserve the end boundary")
	assert.InDelta(t, 3.25, sel.Duration, 1e-9) // 5-1.63 = 3.37 -> 3.25 on the grid
}

func TestDragEndRoundsToStep(t *testing.T) {
	c, m, _ := newTestController(t)

	// +1.1s on the end handle with step 0.25 rounds to +1.0 (6.0 total).
	c.Down(xFor(10))
	c.Move(xFor(11.1))
	c.Up(xFor(11.1))

	sel := m.Selection()
	assert.InDelta(t, 5.0, sel.StartOffset, 1e-9)
	assert.InDelta(t, 6.0, sel.Duration, 1e-9)
}

func TestDragEndClampsToAvailableRoom(t *testing.T) {
	c, m, _ := newTestController(t)
	m.Set(selection.Selection{StartOffset: 12, Duration: 5})

	c.Down(xFor(17))
	c.Move(xFor(19.9))
	c.Up(xFor(19.9))

	sel := m.Selection()
	assert.InDelta(t, 12.0, sel.StartOffset, 1e-9)
	assert.LessOrEqual(t, sel.End(), 20.0+selection.StepTolerance)
}

func TestDragRespectsConstraintMax(t *testing.T) {
	c, m, _ := newTestController(t)
	m.Set(selection.Selection{StartOffset: 0, Duration: 19})
	// Base max is 20; duration was clamped there already.
	assert.InDelta(t, 19.0, m.Selection().Duration, 1e-9)

	c.Down(xFor(19))
	c.Move(xFor(20))
	c.Up(xFor(20))
	assert.LessOrEqual(t, m.Selection().Duration, 20.0+selection.StepTolerance)
}

func TestCancelDiscardsPending(t *testing.T) {
	c, m, _ := newTestController(t)
	before := m.Selection()

	c.Down(xFor(7))
	c.Move(xFor(9))
	_, ok := c.Pending()
	require.True(t, ok)

	c.Cancel()
	_, ok = c.Pending()
	assert.False(t, ok)
	assert.Equal(t, before, m.Selection())
	assert.Equal(t, before, c.Effective())
}

func TestEffectivePrefersPending(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Down(xFor(7))
	c.Move(xFor(9))
	eff := c.Effective()
	assert.InDelta(t, 7.0, eff.StartOffset, 1e-9)
}

func TestHandleZoneScalesWithWidth(t *testing.T) {
	c, _, _ := newTestController(t)
	// 1000px, 20s: 10px handle = 0.2s either side of the edge.
	c.Down(xFor(5.19))
	require.True(t, c.Dragging())
	c.Cancel()

	c.Down(xFor(5.30))
	require.True(t, c.Dragging()) // inside the body now, still a drag
	c.Cancel()

	c.Down(xFor(4.5)) // outside zone and body: plain seek
	assert.False(t, c.Dragging())
}
