// Package measurement implements the measurement library: nodes consulted
// at metrics time via Measure, which may also track state alongside
// processors via Update during signal-update moments.
package measurement

import "github.com/shapeless/lspgo/lspcontext"

// Peek snapshots its input on every signal-update moment and reports the
// latest snapshot whenever it is measured — the "read the current value of
// this upstream" measurement.
type Peek[E lspcontext.WithTimestamp, T any] struct {
	value T
}

// NewPeek builds a Peek measurement with the given initial value.
func NewPeek[E lspcontext.WithTimestamp, T any](initial T) *Peek[E, T] {
	return &Peek[E, T]{value: initial}
}

// Update stores a copy of input.
func (p *Peek[E, T]) Update(_ *lspcontext.UpdateContext[E], input T) {
	p.value = input
}

// Measure returns the last stored value.
func (p *Peek[E, T]) Measure(_ *lspcontext.UpdateContext[E]) T {
	return p.value
}

// PeekState is the serializable state of a Peek measurement.
type PeekState[T any] struct {
	Value T `json:"value"`
}

// Patch restores the measurement from a checkpoint.
func (p *Peek[E, T]) Patch(state PeekState[T]) { p.value = state.Value }

// State returns the measurement's current serializable state.
func (p *Peek[E, T]) State() PeekState[T] { return PeekState[T]{Value: p.value} }

// PeekTimestamp has no state: measuring it simply reads the current
// frontier. update is a no-op.
type PeekTimestamp[E lspcontext.WithTimestamp] struct{}

// NewPeekTimestamp builds a PeekTimestamp measurement.
func NewPeekTimestamp[E lspcontext.WithTimestamp]() *PeekTimestamp[E] { return &PeekTimestamp[E]{} }

// Update is a no-op; PeekTimestamp carries no state.
func (PeekTimestamp[E]) Update(*lspcontext.UpdateContext[E]) {}

// Measure returns the current frontier.
func (PeekTimestamp[E]) Measure(ctx *lspcontext.UpdateContext[E]) lspcontext.Timestamp {
	return ctx.Frontier()
}

// NullState is the empty serializable state for measurements (and
// processors) that carry no meaningful data, such as PeekTimestamp.
type NullState struct{}

// Patch is a no-op; PeekTimestamp has nothing to restore.
func (PeekTimestamp[E]) Patch(NullState) {}

// State returns the empty state marker.
func (PeekTimestamp[E]) State() NullState { return NullState{} }
