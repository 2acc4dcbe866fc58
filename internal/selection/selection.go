// Package selection holds the committed trim range, its constraint set,
// and the split-mode scaling rules.
package selection

import "math"

// StepTolerance is the float slack allowed when checking grid alignment.
const StepTolerance = 1e-6

// Policy is the fixed base constraint policy before split-mode scaling.
type Policy struct {
	// BaseMin and BaseMax bound the selectable duration, in seconds,
	// for a single output item.
	BaseMin float64
	BaseMax float64

	// BaseStep is the duration grid in seconds. Quarter seconds keep
	// frame counts evenly divisible for 16fps-aligned encoders.
	BaseStep float64
}

// DefaultPolicy returns the stock trimmer policy: 1-20s clips on a
// quarter-second grid.
func DefaultPolicy() Policy {
	return Policy{BaseMin: 1, BaseMax: 20, BaseStep: 0.25}
}

// Constraints are the effective duration bounds after split-mode scaling.
type Constraints struct {
	Min  float64
	Max  float64
	Step float64
}

// Selection is a sub-range of the source, in seconds.
type Selection struct {
	StartOffset float64
	Duration    float64
}

// End returns the exclusive end of the selection.
func (s Selection) End() float64 {
	return s.StartOffset + s.Duration
}

// Commit is the value handed to the confirm callback.
type Commit struct {
	StartOffset     float64
	Duration        float64
	SplitMode       bool
	ItemCount       int
	PerItemDuration float64
}

// Quantize rounds x to the nearest multiple of step. Drag results use
// this rule; initial defaults use FloorTo. The two rules are deliberate
// and must not be unified: doing so would shift durations at clip
// boundaries.
func Quantize(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Round(x/step) * step
}

// FloorTo floors x to the step grid.
func FloorTo(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Floor(x/step+StepTolerance) * step
}

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Model is a validating container for the committed selection. Every
// mutation re-establishes the invariants:
//
//	0 <= StartOffset
//	StartOffset + Duration <= sourceDuration
//	Min <= Duration <= Max
//	Duration is a multiple of Step (within StepTolerance)
type Model struct {
	policy         Policy
	sourceDuration float64
	constraints    Constraints
	sel            Selection
	itemCount      int
	splitMode      bool
}

// NewModel returns a model with the given policy and single-item
// constraints. No selection exists until SetSource is called.
func NewModel(policy Policy) *Model {
	m := &Model{policy: policy, itemCount: 1}
	m.constraints = policy.scaled(1, false)
	return m
}

func (p Policy) scaled(itemCount int, splitMode bool) Constraints {
	n := 1.0
	if splitMode && itemCount > 1 {
		n = float64(itemCount)
	}
	return Constraints{
		Min:  p.BaseMin * n,
		Max:  p.BaseMax * n,
		Step: p.BaseStep * n,
	}
}

// SetSource installs a probed source duration and assigns the default
// selection: min(sourceDuration, BaseMax) floored to the base step
// grid, starting at zero.
func (m *Model) SetSource(durationSeconds float64) {
	m.sourceDuration = durationSeconds
	d := math.Min(durationSeconds, m.policy.BaseMax)
	m.sel = Selection{
		StartOffset: 0,
		Duration:    FloorTo(d, m.policy.BaseStep),
	}
	m.reconcile()
}

// SourceDuration returns the installed source duration in seconds, or
// zero when no source is set.
func (m *Model) SourceDuration() float64 {
	return m.sourceDuration
}

// CanEnableSplitMode reports whether the source is long enough to hand
// every output item at least one second.
func (m *Model) CanEnableSplitMode(itemCount int) bool {
	return itemCount >= 1 && m.sourceDuration >= float64(itemCount)
}

// SetConstraints recomputes the constraint set for the given item count
// and split flag, then re-validates the committed selection against it.
func (m *Model) SetConstraints(itemCount int, splitMode bool) {
	if itemCount < 1 {
		itemCount = 1
	}
	m.itemCount = itemCount
	m.splitMode = splitMode
	m.constraints = m.policy.scaled(itemCount, splitMode)
	m.reconcile()
}

// reconcile re-clamps then re-quantizes the committed duration. Clamp
// first, round to the step, then clamp again: rounding can push a value
// back out of range.
func (m *Model) reconcile() {
	if m.sourceDuration <= 0 {
		return
	}
	c := m.constraints
	d := clampf(m.sel.Duration, c.Min, math.Min(c.Max, m.sourceDuration))
	d = Quantize(d, c.Step)
	d = clampf(d, c.Min, math.Min(c.Max, m.sourceDuration))
	start := clampf(m.sel.StartOffset, 0, math.Max(0, m.sourceDuration-d))
	m.sel = Selection{StartOffset: start, Duration: d}
}

// Set stores a candidate selection after clamping and quantizing it,
// and returns what was actually stored.
func (m *Model) Set(sel Selection) Selection {
	m.sel = sel
	m.reconcile()
	return m.sel
}

// Selection returns the committed selection.
func (m *Model) Selection() Selection {
	return m.sel
}

// Constraints returns the effective constraint set.
func (m *Model) Constraints() Constraints {
	return m.constraints
}

// SplitMode reports whether split mode is enabled.
func (m *Model) SplitMode() bool {
	return m.splitMode
}

// ItemCount returns the configured output item count.
func (m *Model) ItemCount() int {
	return m.itemCount
}

// Commit returns the confirm payload for the current selection.
func (m *Model) Commit() Commit {
	per := m.sel.Duration
	if m.splitMode && m.itemCount > 1 {
		per = m.sel.Duration / float64(m.itemCount)
	}
	return Commit{
		StartOffset:     m.sel.StartOffset,
		Duration:        m.sel.Duration,
		SplitMode:       m.splitMode,
		ItemCount:       m.itemCount,
		PerItemDuration: per,
	}
}
