package processor

import (
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/lsptime"
)

// DurationOfPreviousLevel reports, on each change of its input, how long
// the previous value held. Between changes it returns the cached output
// from the last change rather than recomputing against the still-current
// value.
type DurationOfPreviousLevel[E lspcontext.WithTimestamp, T comparable] struct {
	current      T
	currentSince lspcontext.Timestamp
	hasCurrent   bool
	lastOutput   lspcontext.Duration
}

// NewDurationOfPreviousLevel builds a DurationOfPreviousLevel processor.
func NewDurationOfPreviousLevel[E lspcontext.WithTimestamp, T comparable]() *DurationOfPreviousLevel[E, T] {
	return &DurationOfPreviousLevel[E, T]{}
}

// Update returns the duration the previous input value was held, the
// moment input changes; otherwise it returns the last such duration again.
func (d *DurationOfPreviousLevel[E, T]) Update(ctx *lspcontext.UpdateContext[E], input T) lspcontext.Duration {
	if !d.hasCurrent {
		d.current = input
		d.currentSince = ctx.Frontier()
		d.hasCurrent = true
		return d.lastOutput
	}
	if input != d.current {
		d.lastOutput = lsptime.Sub(ctx.Frontier(), d.currentSince)
		d.current = input
		d.currentSince = ctx.Frontier()
	}
	return d.lastOutput
}

// DurationOfPreviousLevelState is the serializable state of a
// DurationOfPreviousLevel processor.
type DurationOfPreviousLevelState[T comparable] struct {
	Current      T                    `json:"current"`
	CurrentSince lspcontext.Timestamp `json:"current_since"`
	HasCurrent   bool                 `json:"has_current"`
	LastOutput   lspcontext.Duration  `json:"last_output"`
}

// Patch restores the processor from a checkpoint.
func (d *DurationOfPreviousLevel[E, T]) Patch(state DurationOfPreviousLevelState[T]) {
	d.current = state.Current
	d.currentSince = state.CurrentSince
	d.hasCurrent = state.HasCurrent
	d.lastOutput = state.LastOutput
}

// State returns the processor's current serializable state.
func (d *DurationOfPreviousLevel[E, T]) State() DurationOfPreviousLevelState[T] {
	return DurationOfPreviousLevelState[T]{Current: d.current, CurrentSince: d.currentSince, HasCurrent: d.hasCurrent, LastOutput: d.lastOutput}
}
