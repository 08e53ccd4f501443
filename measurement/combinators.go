package measurement

import "github.com/shapeless/lspgo/lspcontext"

// Measurement is the contract every measurement node satisfies, used here
// only to type the combinators' inner nodes generically; concrete
// measurements (Peek, DurationTrue, ...) are not required to name this
// interface explicitly, they just happen to implement it.
type Measurement[E lspcontext.WithTimestamp, In, Out any] interface {
	Update(ctx *lspcontext.UpdateContext[E], input In)
	Measure(ctx *lspcontext.UpdateContext[E]) Out
}

// MappedMeasurement wraps one inner measurement, applying a pure function
// to its output at measure time. Update is forwarded unchanged.
type MappedMeasurement[E lspcontext.WithTimestamp, In, InnerOut, Out any] struct {
	inner Measurement[E, In, InnerOut]
	how   func(InnerOut) Out
}

// NewMappedMeasurement builds a mapped measurement around inner and how.
func NewMappedMeasurement[E lspcontext.WithTimestamp, In, InnerOut, Out any](inner Measurement[E, In, InnerOut], how func(InnerOut) Out) *MappedMeasurement[E, In, InnerOut, Out] {
	return &MappedMeasurement[E, In, InnerOut, Out]{inner: inner, how: how}
}

// Update forwards to the inner measurement.
func (m *MappedMeasurement[E, In, InnerOut, Out]) Update(ctx *lspcontext.UpdateContext[E], input In) {
	m.inner.Update(ctx, input)
}

// Measure applies how to the inner measurement's current value.
func (m *MappedMeasurement[E, In, InnerOut, Out]) Measure(ctx *lspcontext.UpdateContext[E]) Out {
	return m.how(m.inner.Measure(ctx))
}

// BinaryCombinedMeasurement wraps two inner measurements and routes each
// half of a tuple input to its matching inner; at measure time their
// outputs are combined by a binary function.
type BinaryCombinedMeasurement[E lspcontext.WithTimestamp, InA, InB, OutA, OutB, Out any] struct {
	a       Measurement[E, InA, OutA]
	b       Measurement[E, InB, OutB]
	combine func(OutA, OutB) Out
}

// NewBinaryCombinedMeasurement builds a binary combinator around a, b, and
// the combining function.
func NewBinaryCombinedMeasurement[E lspcontext.WithTimestamp, InA, InB, OutA, OutB, Out any](
	a Measurement[E, InA, OutA], b Measurement[E, InB, OutB], combine func(OutA, OutB) Out,
) *BinaryCombinedMeasurement[E, InA, InB, OutA, OutB, Out] {
	return &BinaryCombinedMeasurement[E, InA, InB, OutA, OutB, Out]{a: a, b: b, combine: combine}
}

// Update forwards each component of the (a, b) input pair to its inner.
func (m *BinaryCombinedMeasurement[E, InA, InB, OutA, OutB, Out]) Update(ctx *lspcontext.UpdateContext[E], input struct {
	A InA
	B InB
}) {
	m.a.Update(ctx, input.A)
	m.b.Update(ctx, input.B)
}

// Measure combines both inners' current measurements.
func (m *BinaryCombinedMeasurement[E, InA, InB, OutA, OutB, Out]) Measure(ctx *lspcontext.UpdateContext[E]) Out {
	return m.combine(m.a.Measure(ctx), m.b.Measure(ctx))
}

// ScopedMeasurement reports the inner measurement's value accrued *since*
// the last change of a scope control, by snapshotting the inner's
// cumulative reading every time the scope changes and subtracting that
// base at measure time.
type ScopedMeasurement[E lspcontext.WithTimestamp, S comparable, InnerIn any, Out Numeric] struct {
	inner       Measurement[E, InnerIn, Out]
	lastScope   S
	hasScope    bool
	currentBase Out
}

// Numeric bounds the output types ScopedMeasurement can subtract; extend as
// new measurement output types need scoping.
type Numeric interface {
	~int64 | ~float64 | ~uint64
}

// NewScopedMeasurement builds a scoped measurement wrapping inner.
func NewScopedMeasurement[E lspcontext.WithTimestamp, S comparable, InnerIn any, Out Numeric](inner Measurement[E, InnerIn, Out]) *ScopedMeasurement[E, S, InnerIn, Out] {
	return &ScopedMeasurement[E, S, InnerIn, Out]{inner: inner}
}

// Update takes (level, innerInput): on a scope change it snapshots the
// inner's cumulative value as the new base before recording the new scope;
// the inner is always updated regardless of whether the scope changed.
func (m *ScopedMeasurement[E, S, InnerIn, Out]) Update(ctx *lspcontext.UpdateContext[E], level S, innerInput InnerIn) {
	if !m.hasScope || level != m.lastScope {
		m.currentBase = m.inner.Measure(ctx)
		m.lastScope = level
		m.hasScope = true
	}
	m.inner.Update(ctx, innerInput)
}

// Measure returns the inner's current cumulative value minus the base
// captured at the last scope change.
func (m *ScopedMeasurement[E, S, InnerIn, Out]) Measure(ctx *lspcontext.UpdateContext[E]) Out {
	return m.inner.Measure(ctx) - m.currentBase
}

// ScopedMeasurementState is the serializable state of a ScopedMeasurement's
// own bookkeeping; the wrapped measurement's state is not included and must
// be patched into it separately by the caller, mirroring how checkpoint restoration recurses
// into inner node state for every combinator.
type ScopedMeasurementState[S comparable, Out any] struct {
	LastScope   S    `json:"last_scope"`
	HasScope    bool `json:"has_scope"`
	CurrentBase Out  `json:"current_base"`
}

// Patch restores the combinator's own bookkeeping (not the inner's state).
func (m *ScopedMeasurement[E, S, InnerIn, Out]) Patch(state ScopedMeasurementState[S, Out]) {
	m.lastScope = state.LastScope
	m.hasScope = state.HasScope
	m.currentBase = state.CurrentBase
}

// State returns the combinator's own serializable state.
func (m *ScopedMeasurement[E, S, InnerIn, Out]) State() ScopedMeasurementState[S, Out] {
	return ScopedMeasurementState[S, Out]{LastScope: m.lastScope, HasScope: m.hasScope, CurrentBase: m.currentBase}
}
