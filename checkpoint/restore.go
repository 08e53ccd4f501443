package checkpoint

import (
	"fmt"

	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/moment"
	"github.com/shapeless/lspgo/peekiter"
)

// CaptureContext builds the serializable ContextState for ctx: its
// frontier, merge policy, look-ahead position, and every pending internal
// moment.
func CaptureContext[E lspcontext.WithTimestamp](ctx *lspcontext.Context[E]) ContextState {
	pending := ctx.QueueSnapshot()
	queued := make([]QueuedMoment, len(pending))
	for i, m := range pending {
		queued[i] = QueuedMoment{
			Timestamp:    m.Timestamp(),
			SignalUpdate: m.ShouldUpdateSignals(),
			Measurement:  m.ShouldTakeMeasurements(),
		}
	}
	return ContextState{
		Frontier:                 ctx.Frontier(),
		MergeSimultaneousMoments: ctx.MergeSimultaneousMoments(),
		IterState:                ctx.IterState(),
		QueuedMoments:            queued,
	}
}

// RestoreContext rebuilds a fresh Context around src (replayed from its
// start), positioned exactly where state describes: the look-ahead adapter
// skips state.IterState.Offset-BufferedCount items and re-buffers the
// rest, and every captured moment is re-enqueued with its original flags.
func RestoreContext[E lspcontext.WithTimestamp](src peekiter.Source[E], state ContextState) (*lspcontext.Context[E], error) {
	iter, err := peekiter.Restore(src, state.IterState)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: restore iterator: %w", err)
	}
	ctx := lspcontext.Restore(iter, state.MergeSimultaneousMoments, state.Frontier)
	for _, qm := range state.QueuedMoments {
		m := momentFromFlags(qm)
		ctx.RescheduleMoment(m)
	}
	return ctx, nil
}

func momentFromFlags(qm QueuedMoment) moment.Moment {
	m := moment.SignalUpdate(qm.Timestamp)
	if !qm.SignalUpdate {
		m = moment.Measurement(qm.Timestamp)
	}
	if qm.SignalUpdate && qm.Measurement {
		if merged, ok := m.Merge(moment.Measurement(qm.Timestamp)); ok {
			m = merged
		}
	}
	return m
}
