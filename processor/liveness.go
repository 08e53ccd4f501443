package processor

import (
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/lsptime"
)

// LivenessChecker reports whether the external stream still has a
// qualifying event within its expiration period of the last observed
// control change. "Alive now" means "there exists an upcoming event within
// Expiration of the last watermark update", computed by folding forward
// over the buffered look-ahead rather than remembering past events.
type LivenessChecker[E lspcontext.WithTimestamp, C comparable] struct {
	expiration         lspcontext.Duration
	alive              func(E) bool
	lastControl        C
	hasControl         bool
	lastEventTimestamp lspcontext.Timestamp
}

// NewLivenessChecker builds a liveness checker with the given expiration
// period and alive-event predicate.
func NewLivenessChecker[E lspcontext.WithTimestamp, C comparable](expiration lspcontext.Duration, alive func(E) bool) *LivenessChecker[E, C] {
	return &LivenessChecker[E, C]{expiration: expiration, alive: alive}
}

// Update records the frontier as the last-event timestamp whenever control
// changes, then folds forward over the look-ahead buffer up to
// last_event_timestamp+Expiration, returning true iff a qualifying event is
// found before the cutoff.
func (l *LivenessChecker[E, C]) Update(ctx *lspcontext.UpdateContext[E], control C) bool {
	if !l.hasControl || control != l.lastControl {
		l.lastControl = control
		l.hasControl = true
		l.lastEventTimestamp = ctx.Frontier()
	}
	cutoff := lsptime.AddSaturating(l.lastEventTimestamp, l.expiration)

	result := ctx.PeekFold(false, func(acc any, ev E) (any, bool) {
		found := acc.(bool)
		if found || ev.Timestamp() >= cutoff {
			return found, false
		}
		return l.alive(ev), true
	})
	return result.(bool)
}

// LivenessCheckerState is the serializable state of a LivenessChecker.
type LivenessCheckerState[C comparable] struct {
	LastControl        C                    `json:"last_control"`
	HasControl         bool                 `json:"has_control"`
	LastEventTimestamp lspcontext.Timestamp `json:"last_event_timestamp"`
}

// Patch restores the checker from a checkpoint.
func (l *LivenessChecker[E, C]) Patch(state LivenessCheckerState[C]) {
	l.lastControl = state.LastControl
	l.hasControl = state.HasControl
	l.lastEventTimestamp = state.LastEventTimestamp
}

// State returns the checker's current serializable state.
func (l *LivenessChecker[E, C]) State() LivenessCheckerState[C] {
	return LivenessCheckerState[C]{LastControl: l.lastControl, HasControl: l.hasControl, LastEventTimestamp: l.lastEventTimestamp}
}
