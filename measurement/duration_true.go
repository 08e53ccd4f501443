package measurement

import (
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/lsptime"
)

// DurationTrue accumulates the total time its boolean input has spent true,
// monotonically: the accumulated total never decreases, and the currently
// open true-interval (if any) is added in only at Measure time, not
// committed until the next falling edge.
type DurationTrue[E lspcontext.WithTimestamp] struct {
	current        bool
	accumulated    lspcontext.Duration
	lastTrueStarts lspcontext.Timestamp
}

// NewDurationTrue builds a DurationTrue measurement starting false.
func NewDurationTrue[E lspcontext.WithTimestamp]() *DurationTrue[E] {
	return &DurationTrue[E]{}
}

// Update applies a rising or falling edge: rising records the start of the
// true interval; falling folds the just-closed interval into accumulated.
func (d *DurationTrue[E]) Update(ctx *lspcontext.UpdateContext[E], input bool) {
	if input == d.current {
		return
	}
	now := ctx.Frontier()
	if input {
		d.lastTrueStarts = now
	} else {
		d.accumulated += lsptime.Sub(now, d.lastTrueStarts)
	}
	d.current = input
}

// Measure returns accumulated, plus the still-open true interval if the
// input is currently true.
func (d *DurationTrue[E]) Measure(ctx *lspcontext.UpdateContext[E]) lspcontext.Duration {
	if d.current {
		return d.accumulated + lsptime.Sub(ctx.Frontier(), d.lastTrueStarts)
	}
	return d.accumulated
}

// DurationTrueState is the serializable state of a DurationTrue measurement.
type DurationTrueState struct {
	Current        bool                 `json:"current"`
	Accumulated    lspcontext.Duration  `json:"accumulated"`
	LastTrueStarts lspcontext.Timestamp `json:"last_true_starts"`
}

// Patch restores the measurement from a checkpoint.
func (d *DurationTrue[E]) Patch(state DurationTrueState) {
	d.current = state.Current
	d.accumulated = state.Accumulated
	d.lastTrueStarts = state.LastTrueStarts
}

// State returns the measurement's current serializable state.
func (d *DurationTrue[E]) State() DurationTrueState {
	return DurationTrueState{Current: d.current, Accumulated: d.accumulated, LastTrueStarts: d.lastTrueStarts}
}

// DurationSinceBecomeTrue reports how long the input has held true since it
// most recently flipped; it resets to zero on a falling edge instead of
// accumulating across intervals like DurationTrue.
type DurationSinceBecomeTrue[E lspcontext.WithTimestamp] struct {
	lastInput bool
	since     lspcontext.Timestamp
}

// NewDurationSinceBecomeTrue builds the measurement starting false.
func NewDurationSinceBecomeTrue[E lspcontext.WithTimestamp]() *DurationSinceBecomeTrue[E] {
	return &DurationSinceBecomeTrue[E]{}
}

// Update records the frontier as "since" whenever input changes, true or
// false.
func (d *DurationSinceBecomeTrue[E]) Update(ctx *lspcontext.UpdateContext[E], input bool) {
	if input != d.lastInput {
		d.lastInput = input
		d.since = ctx.Frontier()
	}
}

// Measure returns frontier-since while true, or zero while false.
func (d *DurationSinceBecomeTrue[E]) Measure(ctx *lspcontext.UpdateContext[E]) lspcontext.Duration {
	if !d.lastInput {
		return 0
	}
	return lsptime.Sub(ctx.Frontier(), d.since)
}

// DurationSinceBecomeTrueState is the serializable state of a
// DurationSinceBecomeTrue measurement.
type DurationSinceBecomeTrueState struct {
	LastInput bool                 `json:"last_input"`
	Since     lspcontext.Timestamp `json:"since"`
}

// Patch restores the measurement from a checkpoint.
func (d *DurationSinceBecomeTrue[E]) Patch(state DurationSinceBecomeTrueState) {
	d.lastInput = state.LastInput
	d.since = state.Since
}

// State returns the measurement's current serializable state.
func (d *DurationSinceBecomeTrue[E]) State() DurationSinceBecomeTrueState {
	return DurationSinceBecomeTrueState{LastInput: d.lastInput, Since: d.since}
}

// DurationOfCurrentLevel reports how long the input has held its current
// value, for any comparable level type (not just bool). Before the first
// Update it reports zero.
type DurationOfCurrentLevel[E lspcontext.WithTimestamp, T comparable] struct {
	start        lspcontext.Timestamp
	currentLevel *T
}

// NewDurationOfCurrentLevel builds the measurement with no level observed
// yet.
func NewDurationOfCurrentLevel[E lspcontext.WithTimestamp, T comparable]() *DurationOfCurrentLevel[E, T] {
	return &DurationOfCurrentLevel[E, T]{}
}

// Update records the frontier as start whenever input differs from the
// stored level (including the first observation).
func (d *DurationOfCurrentLevel[E, T]) Update(ctx *lspcontext.UpdateContext[E], input T) {
	if d.currentLevel == nil || *d.currentLevel != input {
		level := input
		d.currentLevel = &level
		d.start = ctx.Frontier()
	}
}

// Measure returns zero if no level has been observed yet, else frontier-start.
func (d *DurationOfCurrentLevel[E, T]) Measure(ctx *lspcontext.UpdateContext[E]) lspcontext.Duration {
	if d.currentLevel == nil {
		return 0
	}
	return lsptime.Sub(ctx.Frontier(), d.start)
}

// DurationOfCurrentLevelState is the serializable state of a
// DurationOfCurrentLevel measurement.
type DurationOfCurrentLevelState[T comparable] struct {
	Start        lspcontext.Timestamp `json:"start"`
	CurrentLevel *T                   `json:"current_level,omitempty"`
}

// Patch restores the measurement from a checkpoint.
func (d *DurationOfCurrentLevel[E, T]) Patch(state DurationOfCurrentLevelState[T]) {
	d.start = state.Start
	d.currentLevel = state.CurrentLevel
}

// State returns the measurement's current serializable state.
func (d *DurationOfCurrentLevel[E, T]) State() DurationOfCurrentLevelState[T] {
	return DurationOfCurrentLevelState[T]{Start: d.start, CurrentLevel: d.currentLevel}
}
