package measurement

import "github.com/shapeless/lspgo/lspcontext"

// LinearChange integrates a piecewise-constant rate over time: each
// interval between rate changes contributes (duration * rate) to an
// accumulator kept in float64 as nanoseconds times rate, reported as
// seconds times rate (divided by 1e9) at Measure time.
type LinearChange[E lspcontext.WithTimestamp] struct {
	rate        float64
	rateStart   lspcontext.Timestamp
	accumulated float64
}

// NewLinearChange builds a LinearChange measurement starting at rate zero.
func NewLinearChange[E lspcontext.WithTimestamp]() *LinearChange[E] {
	return &LinearChange[E]{}
}

// Update folds the just-closed interval's contribution into accumulated
// whenever rate changes.
func (l *LinearChange[E]) Update(ctx *lspcontext.UpdateContext[E], rate float64) {
	if rate == l.rate {
		return
	}
	now := ctx.Frontier()
	elapsed := float64(now - l.rateStart)
	l.accumulated += elapsed * l.rate
	l.rate = rate
	l.rateStart = now
}

// Measure returns (accumulated + (frontier-rateStart)*rate) / 1e9, folding
// in the still-open interval's contribution without committing it.
func (l *LinearChange[E]) Measure(ctx *lspcontext.UpdateContext[E]) float64 {
	elapsed := float64(ctx.Frontier() - l.rateStart)
	return (l.accumulated + elapsed*l.rate) / 1e9
}

// LinearChangeState is the serializable state of a LinearChange measurement.
type LinearChangeState struct {
	Rate        float64              `json:"rate"`
	RateStart   lspcontext.Timestamp `json:"rate_start"`
	Accumulated float64              `json:"accumulated"`
}

// Patch restores the measurement from a checkpoint.
func (l *LinearChange[E]) Patch(state LinearChangeState) {
	l.rate = state.Rate
	l.rateStart = state.RateStart
	l.accumulated = state.Accumulated
}

// State returns the measurement's current serializable state.
func (l *LinearChange[E]) State() LinearChangeState {
	return LinearChangeState{Rate: l.rate, RateStart: l.rateStart, Accumulated: l.accumulated}
}
