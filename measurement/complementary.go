package measurement

import "github.com/shapeless/lspgo/lspcontext"

// ResetPolicy selects when a Complementary output's subtrahend resets.
// Both readings of the reset-switch contract are implemented as distinct
// named policies rather than guessing a single meaning.
type ResetPolicy int

const (
	// ResetOnChange treats the reset switch's value as a plain edge
	// trigger: the subtrahend is reset to the current raw value whenever
	// the switch differs from its last observed value.
	ResetOnChange ResetPolicy = iota
	// ResetOnFirstEmission additionally forces a reset on the very first
	// emission, regardless of the switch, matching "first emission is
	// always a reset point" read literally.
	ResetOnFirstEmission
)

// Complementary implements the IR's complementary-output contract: an
// output metric reported as "current minus the value this metric took at
// the most recently emitted record", resetting the subtrahend to the
// current raw value on the first emission and whenever a declared reset
// switch changes.
type Complementary[E lspcontext.WithTimestamp, S comparable, Out Numeric] struct {
	raw         Measurement[E, any, Out]
	policy      ResetPolicy
	previous    Out
	lastSwitch  S
	hasSwitch   bool
	hasEmitted  bool
}

// NewComplementary builds a Complementary combinator wrapping raw, whose
// subtrahend resets per policy.
func NewComplementary[E lspcontext.WithTimestamp, S comparable, Out Numeric](raw Measurement[E, any, Out], policy ResetPolicy) *Complementary[E, S, Out] {
	return &Complementary[E, S, Out]{raw: raw, policy: policy}
}

// Update forwards to raw and tracks the reset switch's edges.
func (c *Complementary[E, S, Out]) Update(ctx *lspcontext.UpdateContext[E], resetSwitch S, rawInput any) {
	c.raw.Update(ctx, rawInput)
	if !c.hasSwitch || resetSwitch != c.lastSwitch {
		c.lastSwitch = resetSwitch
		c.hasSwitch = true
		c.previous = c.raw.Measure(ctx)
	}
}

// Measure returns the raw measurement's current value minus the last
// snapshot, then advances the snapshot to the current value. Measure is
// the point at which a metrics record is actually emitted, so the
// subtrahend is the value this metric took at the most recently emitted
// record. Because the snapshot advances on every call, Measure is not
// idempotent: calling it twice within one moment reports the full delta
// followed by zero. Call it exactly once per emitted record.
func (c *Complementary[E, S, Out]) Measure(ctx *lspcontext.UpdateContext[E]) Out {
	current := c.raw.Measure(ctx)
	if !c.hasEmitted && c.policy == ResetOnFirstEmission {
		c.previous = current
	}
	c.hasEmitted = true
	delta := current - c.previous
	c.previous = current
	return delta
}

// ComplementaryState is the serializable state of a Complementary
// combinator's own bookkeeping (the wrapped raw measurement's state is
// recursed into separately, per the combinator checkpoint convention).
type ComplementaryState[S comparable, Out any] struct {
	Previous   Out  `json:"previous"`
	LastSwitch S    `json:"last_switch"`
	HasSwitch  bool `json:"has_switch"`
	HasEmitted bool `json:"has_emitted"`
}

// Patch restores the combinator's own bookkeeping.
func (c *Complementary[E, S, Out]) Patch(state ComplementaryState[S, Out]) {
	c.previous = state.Previous
	c.lastSwitch = state.LastSwitch
	c.hasSwitch = state.HasSwitch
	c.hasEmitted = state.HasEmitted
}

// State returns the combinator's own serializable state.
func (c *Complementary[E, S, Out]) State() ComplementaryState[S, Out] {
	return ComplementaryState[S, Out]{Previous: c.previous, LastSwitch: c.lastSwitch, HasSwitch: c.hasSwitch, HasEmitted: c.hasEmitted}
}
