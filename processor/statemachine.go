package processor

import "github.com/shapeless/lspgo/lspcontext"

// StateMachine transitions its state only on edges of a trigger value: a
// repeated trigger is idempotent, so only the first of a run of identical
// triggers causes a transition.
type StateMachine[E lspcontext.WithTimestamp, S any, T comparable, In any] struct {
	state       S
	lastTrigger T
	hasTrigger  bool
	transition  func(s S, input In) S
}

// NewStateMachine builds a state machine starting at initialState, using
// transition as the edge-triggered transition function.
func NewStateMachine[E lspcontext.WithTimestamp, S any, T comparable, In any](initialState S, transition func(s S, input In) S) *StateMachine[E, S, T, In] {
	return &StateMachine[E, S, T, In]{state: initialState, transition: transition}
}

// Update applies one (trigger, input) pair. If trigger differs from the
// last observed trigger (or this is the first call), the transition
// function runs and the new state is recorded; otherwise the state is left
// untouched. Either way the current state is returned.
func (m *StateMachine[E, S, T, In]) Update(_ *lspcontext.UpdateContext[E], trigger T, input In) S {
	if !m.hasTrigger || trigger != m.lastTrigger {
		m.state = m.transition(m.state, input)
		m.lastTrigger = trigger
		m.hasTrigger = true
	}
	return m.state
}

// StateMachineState is the serializable state of a StateMachine.
type StateMachineState[S any, T comparable] struct {
	State       S    `json:"state"`
	LastTrigger T    `json:"last_trigger"`
	HasTrigger  bool `json:"has_trigger"`
}

// Patch restores the state machine from a checkpoint.
func (m *StateMachine[E, S, T, In]) Patch(state StateMachineState[S, T]) {
	m.state = state.State
	m.lastTrigger = state.LastTrigger
	m.hasTrigger = state.HasTrigger
}

// State returns the state machine's current serializable state.
func (m *StateMachine[E, S, T, In]) State() StateMachineState[S, T] {
	return StateMachineState[S, T]{State: m.state, LastTrigger: m.lastTrigger, HasTrigger: m.hasTrigger}
}
