package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSourcedModel(t *testing.T, sourceDuration float64) *Model {
	t.Helper()
	m := NewModel(DefaultPolicy())
	m.SetSource(sourceDuration)
	return m
}

func assertInvariants(t *testing.T, m *Model) {
	t.Helper()
	sel := m.Selection()
	c := m.Constraints()
	assert.GreaterOrEqual(t, sel.StartOffset, 0.0)
	assert.LessOrEqual(t, sel.End(), m.SourceDuration()+StepTolerance)
	assert.GreaterOrEqual(t, sel.Duration, c.Min-StepTolerance)
	assert.LessOrEqual(t, sel.Duration, c.Max+StepTolerance)
	_, frac := math.Modf(sel.Duration/c.Step + StepTolerance)
	assert.InDelta(t, 0, frac, 1e-4, "duration %v not on step grid %v", sel.Duration, c.Step)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		x, step, want float64
	}{
		{1.1, 0.25, 1.0},
		{1.13, 0.25, 1.25},
		{6.1, 0.25, 6.0},
		{2.6, 0.75, 2.25},
		{3.0, 0.75, 3.0},
		{5.0, 0, 5.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantize(tt.x, tt.step), 1e-9)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, step := range []float64{0.25, 0.75, 1.5} {
		for x := 0.0; x < 30; x += 0.173 {
			q := Quantize(x, step)
			assert.InDelta(t, q, Quantize(q, step), 1e-9)
		}
	}
}

func TestFloorTo(t *testing.T) {
	assert.InDelta(t, 11.75, FloorTo(11.9, 0.25), 1e-9)
	assert.InDelta(t, 12.0, FloorTo(12.0, 0.25), 1e-9)
	assert.InDelta(t, 19.75, FloorTo(19.99, 0.25), 1e-9)
}

func TestDefaultForShortSource(t *testing.T) {
	m := newSourcedModel(t, 12.0)
	sel := m.Selection()
	// min(12, 20) floored to the quarter-second grid.
	assert.InDelta(t, 12.0, sel.Duration, 1e-9)
	assert.Zero(t, sel.StartOffset)
	assertInvariants(t, m)
}

func TestDefaultForLongSource(t *testing.T) {
	m := newSourcedModel(t, 95.3)
	assert.InDelta(t, 20.0, m.Selection().Duration, 1e-9)
	assertInvariants(t, m)
}

func TestSplitModeScaling(t *testing.T) {
	m := newSourcedModel(t, 12.0)
	require.True(t, m.CanEnableSplitMode(3))
	m.SetConstraints(3, true)

	c := m.Constraints()
	assert.InDelta(t, 3.0, c.Min, 1e-9)
	assert.InDelta(t, 60.0, c.Max, 1e-9)
	assert.InDelta(t, 0.75, c.Step, 1e-9)

	// 12.0 is a 0.75 multiple and within [3, min(60, 12)]: unchanged.
	assert.InDelta(t, 12.0, m.Selection().Duration, 1e-9)
	assertInvariants(t, m)
}

func TestSplitModeRequantizes(t *testing.T) {
	m := newSourcedModel(t, 40.0)
	m.Set(Selection{StartOffset: 2, Duration: 12.5})
	m.SetConstraints(3, true)

	// 12.5 is not on the 0.75 grid; nearest multiple within bounds.
	sel := m.Selection()
	assert.InDelta(t, 12.75, sel.Duration, 1e-9)
	assertInvariants(t, m)
}

func TestSplitToggleRoundTrip(t *testing.T) {
	m := newSourcedModel(t, 40.0)
	m.Set(Selection{StartOffset: 1, Duration: 12.5})
	before := m.Selection().Duration

	m.SetConstraints(3, true)
	m.SetConstraints(3, false)

	after := m.Selection().Duration
	assert.LessOrEqual(t, math.Abs(after-before), m.Constraints().Step+StepTolerance)
	assertInvariants(t, m)
}

func TestCanEnableSplitMode(t *testing.T) {
	m := newSourcedModel(t, 2.5)
	assert.True(t, m.CanEnableSplitMode(2))
	assert.False(t, m.CanEnableSplitMode(3))
	assert.False(t, m.CanEnableSplitMode(0))
}

func TestSetClampsToSource(t *testing.T) {
	m := newSourcedModel(t, 30.0)
	got := m.Set(Selection{StartOffset: 25, Duration: 10})
	assert.LessOrEqual(t, got.End(), 30.0+StepTolerance)
	assertInvariants(t, m)
}

func TestSetRejectsBelowMin(t *testing.T) {
	m := newSourcedModel(t, 30.0)
	got := m.Set(Selection{StartOffset: 0, Duration: 0.1})
	assert.InDelta(t, 1.0, got.Duration, 1e-9)
	assertInvariants(t, m)
}

func TestCommitPerItemDuration(t *testing.T) {
	m := newSourcedModel(t, 12.0)
	m.SetConstraints(3, true)
	m.Set(Selection{StartOffset: 0, Duration: 9})

	c := m.Commit()
	assert.True(t, c.SplitMode)
	assert.Equal(t, 3, c.ItemCount)
	assert.InDelta(t, 3.0, c.PerItemDuration, 1e-9)

	m.SetConstraints(3, false)
	c = m.Commit()
	assert.False(t, c.SplitMode)
	assert.InDelta(t, c.Duration, c.PerItemDuration, 1e-9)
}

func TestConstraintChangeKeepsEndInBounds(t *testing.T) {
	m := newSourcedModel(t, 5.0)
	m.Set(Selection{StartOffset: 3.5, Duration: 1.5})
	m.SetConstraints(4, true) // min=4 forces duration up, start must give way
	sel := m.Selection()
	assert.InDelta(t, 4.0, sel.Duration, 1e-9)
	assert.LessOrEqual(t, sel.End(), 5.0+StepTolerance)
	assertInvariants(t, m)
}
