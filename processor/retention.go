package processor

import "github.com/shapeless/lspgo/lsptime"

// RetentionState is the serializable state of a retention policy: the
// timestamp at which the currently held value will be forgotten (zero for
// policies that never forget).
type RetentionState struct {
	ValueForgottenTimestamp lsptime.Timestamp `json:"value_forgotten_timestamp"`
}

// Retention abstracts a latch's forgetting policy: how long a set value is
// remembered, and what it reverts to once forgotten.
type Retention[T any] interface {
	// DropTimestamp is called every time the latch is set. It returns the
	// delay (from now) after which the latch should next be re-evaluated
	// for dropping, or false if this policy never drops.
	DropTimestamp(now lsptime.Timestamp) (lsptime.Duration, bool)
	// ShouldDrop returns the value the latch should fall back to if it has
	// expired as of now, or false if it has not (or never will).
	ShouldDrop(now lsptime.Timestamp) (T, bool)
	// State and Patch capture and restore the policy's pending-expiry
	// state, so a checkpointed latch does not forget early (or late)
	// after a restore.
	State() RetentionState
	Patch(RetentionState)
}

// KeepForever never forgets a set value.
type KeepForever[T any] struct{}

// DropTimestamp always reports no scheduled drop.
func (KeepForever[T]) DropTimestamp(lsptime.Timestamp) (lsptime.Duration, bool) {
	return 0, false
}

// ShouldDrop always reports the value has not expired.
func (KeepForever[T]) ShouldDrop(lsptime.Timestamp) (T, bool) {
	var zero T
	return zero, false
}

// State returns the empty state; KeepForever has no pending expiry.
func (KeepForever[T]) State() RetentionState { return RetentionState{} }

// Patch does nothing.
func (KeepForever[T]) Patch(RetentionState) {}

// TimeToLive forgets a set value time_to_live after it was last set,
// reverting to default_value.
type TimeToLive[T any] struct {
	DefaultValue            T
	ValueForgottenTimestamp lsptime.Timestamp
	Duration                lsptime.Duration
}

// NewTimeToLive builds a TTL retention policy with the given default and
// time-to-live; the forgotten timestamp starts at zero (already expired)
// until the latch is first set.
func NewTimeToLive[T any](def T, ttl lsptime.Duration) *TimeToLive[T] {
	return &TimeToLive[T]{DefaultValue: def, Duration: ttl}
}

// DropTimestamp records when the currently-set value will be forgotten and
// returns the delay to schedule a re-check at.
func (r *TimeToLive[T]) DropTimestamp(now lsptime.Timestamp) (lsptime.Duration, bool) {
	r.ValueForgottenTimestamp = lsptime.AddSaturating(now, r.Duration)
	return r.Duration, true
}

// ShouldDrop returns the default value once now has reached the forgotten
// timestamp.
func (r *TimeToLive[T]) ShouldDrop(now lsptime.Timestamp) (T, bool) {
	if r.ValueForgottenTimestamp <= now {
		return r.DefaultValue, true
	}
	var zero T
	return zero, false
}

// State returns the pending-expiry timestamp.
func (r *TimeToLive[T]) State() RetentionState {
	return RetentionState{ValueForgottenTimestamp: r.ValueForgottenTimestamp}
}

// Patch restores the pending-expiry timestamp.
func (r *TimeToLive[T]) Patch(state RetentionState) {
	r.ValueForgottenTimestamp = state.ValueForgottenTimestamp
}
