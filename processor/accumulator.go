package processor

import "github.com/shapeless/lspgo/lspcontext"

// Accumulator folds data into a running total on edges of a control value,
// gated by a semantic filter: only controls that pass the filter (and
// differ from the last observed control) cause an accumulation. This keeps
// a single logical event from double-counting when it shows up as several
// identical patches in a row.
type Accumulator[E lspcontext.WithTimestamp, D any, C comparable] struct {
	acc         D
	add         func(D, D) D
	filter      func(C) bool
	lastControl C
	hasControl  bool
}

// NewAccumulator builds an accumulator starting at initial, combining new
// data with add, and gating accumulation on filter(control).
func NewAccumulator[E lspcontext.WithTimestamp, D any, C comparable](initial D, add func(D, D) D, filter func(C) bool) *Accumulator[E, D, C] {
	return &Accumulator[E, D, C]{acc: initial, add: add, filter: filter}
}

// Update applies one (control, data) pair. If control is an edge (differs
// from, or there is no, last observed control) and filter(control) holds,
// acc becomes add(acc, data). The control is recorded on every edge
// regardless of whether the filter passed, so a filtered-out control
// doesn't keep retriggering just by repeating.
func (a *Accumulator[E, D, C]) Update(_ *lspcontext.UpdateContext[E], control C, data D) D {
	edge := !a.hasControl || control != a.lastControl
	if edge && a.filter(control) {
		a.acc = a.add(a.acc, data)
	}
	if edge {
		a.lastControl = control
		a.hasControl = true
	}
	return a.acc
}

// AccumulatorState is the serializable state of an Accumulator.
type AccumulatorState[D any, C comparable] struct {
	Acc         D    `json:"acc"`
	LastControl C    `json:"last_control"`
	HasControl  bool `json:"has_control"`
}

// Patch restores the accumulator from a checkpoint.
func (a *Accumulator[E, D, C]) Patch(state AccumulatorState[D, C]) {
	a.acc = state.Acc
	a.lastControl = state.LastControl
	a.hasControl = state.HasControl
}

// State returns the accumulator's current serializable state.
func (a *Accumulator[E, D, C]) State() AccumulatorState[D, C] {
	return AccumulatorState[D, C]{Acc: a.acc, LastControl: a.lastControl, HasControl: a.hasControl}
}
