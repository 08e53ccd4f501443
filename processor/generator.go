package processor

import (
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/lsptime"
)

// GeneratorFunc is a pure function of the current frontier producing the
// level that should hold from now on, and the duration until it expires
// (after which the generator is called again).
type GeneratorFunc[T any] func(now lspcontext.Timestamp) (value T, validFor lspcontext.Duration)

// SignalGenerator emits a value purely as a function of time, re-invoking
// its generator function once the previously produced value's validity
// window elapses, and scheduling its own wake-up so it is re-evaluated
// exactly when that happens.
type SignalGenerator[E lspcontext.WithTimestamp, T any] struct {
	gen        GeneratorFunc[T]
	lastValue  T
	untilTs    lspcontext.Timestamp
	hasValue   bool
}

// NewSignalGenerator builds a generator around the given pure function.
func NewSignalGenerator[E lspcontext.WithTimestamp, T any](gen GeneratorFunc[T]) *SignalGenerator[E, T] {
	return &SignalGenerator[E, T]{gen: gen}
}

// Update has no input (the generator's output depends only on time): if the
// current value has expired, a new value is produced and a wake-up is
// scheduled for its expiry.
func (g *SignalGenerator[E, T]) Update(ctx *lspcontext.UpdateContext[E]) T {
	now := ctx.Frontier()
	if !g.hasValue || g.untilTs <= now {
		value, delta := g.gen(now)
		g.lastValue = value
		g.untilTs = lsptime.AddSaturating(now, delta)
		g.hasValue = true
		if g.untilTs > now {
			ctx.ScheduleSignalUpdate(delta)
		}
	}
	return g.lastValue
}

// SignalGeneratorState is the serializable state of a SignalGenerator.
type SignalGeneratorState[T any] struct {
	LastValue T                    `json:"last_value"`
	UntilTs   lspcontext.Timestamp `json:"until_ts"`
	HasValue  bool                 `json:"has_value"`
}

// Patch restores the generator from a checkpoint.
func (g *SignalGenerator[E, T]) Patch(state SignalGeneratorState[T]) {
	g.lastValue = state.LastValue
	g.untilTs = state.UntilTs
	g.hasValue = state.HasValue
}

// State returns the generator's current serializable state.
func (g *SignalGenerator[E, T]) State() SignalGeneratorState[T] {
	return SignalGeneratorState[T]{LastValue: g.lastValue, UntilTs: g.untilTs, HasValue: g.hasValue}
}

// SquareWave returns a GeneratorFunc that is false for the first half of
// each period and true for the rest, starting in the low half at time 0
// shifted by phase.
func SquareWave(period lspcontext.Duration, phase lspcontext.Duration) GeneratorFunc[bool] {
	return func(now lspcontext.Timestamp) (bool, lspcontext.Duration) {
		if period == 0 {
			return false, 0
		}
		shifted := (uint64(now) + uint64(phase)) % uint64(period)
		high := shifted >= uint64(period)/2
		remaining := uint64(period)/2 - shifted
		if high {
			remaining = uint64(period) - shifted
		}
		return high, lspcontext.Duration(remaining)
	}
}

// RaisingLevel returns a GeneratorFunc that steps a counter upward by step
// every tick of duration, starting from start, holding each level for
// duration once phase has elapsed.
func RaisingLevel(start, step int64, duration lspcontext.Duration, phase lspcontext.Duration) GeneratorFunc[int64] {
	return func(now lspcontext.Timestamp) (int64, lspcontext.Duration) {
		if uint64(now) < uint64(phase) {
			return start, lspcontext.Duration(uint64(phase) - uint64(now))
		}
		if duration == 0 {
			return start, 0
		}
		elapsed := uint64(now) - uint64(phase)
		ticks := elapsed / uint64(duration)
		remaining := uint64(duration) - elapsed%uint64(duration)
		return start + step*int64(ticks), lspcontext.Duration(remaining)
	}
}
