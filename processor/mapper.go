package processor

import "github.com/shapeless/lspgo/lspcontext"

// SignalMapper is a stateless input-to-output transform: its output is
// always f(input), recomputed every signal-update moment.
type SignalMapper[E lspcontext.WithTimestamp, In, Out any] struct {
	how func(In) Out
}

// NewSignalMapper builds a mapper around the given pure function.
func NewSignalMapper[E lspcontext.WithTimestamp, In, Out any](how func(In) Out) *SignalMapper[E, In, Out] {
	return &SignalMapper[E, In, Out]{how: how}
}

// Update returns how(input). The context is unused; a mapper carries no
// state and never schedules anything.
func (m *SignalMapper[E, In, Out]) Update(_ *lspcontext.UpdateContext[E], input In) Out {
	return m.how(input)
}

// NullState is the empty serializable state for processors that carry no
// meaningful data (pure mappers, constant generators).
type NullState struct{}

// Patch is a no-op; a SignalMapper has nothing to restore.
func (m *SignalMapper[E, In, Out]) Patch(NullState) {}

// State returns the empty state marker.
func (m *SignalMapper[E, In, Out]) State() NullState { return NullState{} }
