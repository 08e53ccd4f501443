// Package lspcontext owns the frontier, the internal event queue, and the
// external-event look-ahead adapter, and drives the single step function
// (NextEvent) the outer driver loop repeatedly calls.
package lspcontext

import (
	"github.com/shapeless/lspgo/lsptime"
	"github.com/shapeless/lspgo/moment"
	"github.com/shapeless/lspgo/peekiter"
	"github.com/shapeless/lspgo/queue"
	"github.com/shapeless/lspgo/signalbag"
)

// Timestamp and Duration are re-exported for callers that only import this
// package.
type (
	Timestamp = lsptime.Timestamp
	Duration  = lsptime.Duration
)

// WithTimestamp is the contract every external event must satisfy so the
// context can read its position in the timeline without knowing its shape.
type WithTimestamp interface {
	Timestamp() Timestamp
}

// Context is the global LSP context: it owns the queue, the look-ahead
// iterator, and the frontier, and assembles external patches into the
// signal bag as it steps.
type Context[E WithTimestamp] struct {
	frontier                 Timestamp
	iter                     *peekiter.MultiPeek[E]
	queue                    *queue.InternalEventQueue
	mergeSimultaneousMoments bool
}

// New builds a context over src starting at frontier zero, with an empty
// queue.
func New[E WithTimestamp](src peekiter.Source[E], mergeSimultaneousMoments bool) *Context[E] {
	return &Context[E]{
		iter:                     peekiter.New(src),
		queue:                    queue.New(),
		mergeSimultaneousMoments: mergeSimultaneousMoments,
	}
}

// Restore rebuilds a context around an already-positioned iterator adapter
// (typically produced by peekiter.Restore), setting its frontier and merge
// policy directly rather than starting at zero. Used by the checkpoint
// package; node/signal-bag state is restored separately by the caller.
func Restore[E WithTimestamp](iter *peekiter.MultiPeek[E], mergeSimultaneousMoments bool, frontier Timestamp) *Context[E] {
	return &Context[E]{
		iter:                     iter,
		queue:                    queue.New(),
		mergeSimultaneousMoments: mergeSimultaneousMoments,
		frontier:                 frontier,
	}
}

// Frontier returns the context's current time.
func (c *Context[E]) Frontier() Timestamp { return c.frontier }

// MergeSimultaneousMoments reports the context's coincident-event policy,
// for checkpoint capture.
func (c *Context[E]) MergeSimultaneousMoments() bool { return c.mergeSimultaneousMoments }

// IterState returns the look-ahead adapter's current serializable
// position, for checkpoint capture.
func (c *Context[E]) IterState() peekiter.State { return c.iter.Patch() }

// QueueSnapshot returns every moment currently pending in the internal
// queue, for checkpoint capture.
func (c *Context[E]) QueueSnapshot() []moment.Moment { return c.queue.Snapshot() }

// RescheduleMoment re-enqueues a previously captured moment. Used to
// restore the internal queue from a checkpoint snapshot.
func (c *Context[E]) RescheduleMoment(m moment.Moment) { c.queue.PushMoment(m) }

// BorrowUpdateContext hands out the single UpdateContext valid for the
// current driver iteration. Callers must not retain it past that iteration.
func (c *Context[E]) BorrowUpdateContext() *UpdateContext[E] {
	return &UpdateContext[E]{
		queue:                    c.queue,
		iter:                     c.iter,
		frontier:                 c.frontier,
		mergeSimultaneousMoments: c.mergeSimultaneousMoments,
	}
}

func (c *Context[E]) assembleNextState(ts Timestamp, bag signalbag.Bag[E]) {
	if c.mergeSimultaneousMoments {
		for {
			peeked, ok := c.iter.Peek()
			if !ok || peeked.Timestamp() != ts {
				break
			}
			event, _ := c.iter.Next()
			bag.Patch(event)
		}
		return
	}
	if peeked, ok := c.iter.Peek(); ok && peeked.Timestamp() == ts {
		event, _ := c.iter.Next()
		bag.Patch(event)
	}
}

// NextEvent computes and returns the next moment the driver must act on,
// applying any external patches due at that moment into bag. It returns
// false as soon as the external stream is exhausted; moments still pending
// in the internal queue at that point are not returned.
func (c *Context[E]) NextEvent(bag signalbag.Bag[E]) (moment.Moment, bool) {
	peeked, ok := c.iter.Peek()
	if !ok {
		return moment.Moment{}, false
	}
	externalFrontier := peeked.Timestamp()
	internalFrontier := c.queue.EarliestScheduledTime()

	if externalFrontier != lsptime.MaxTimestamp && externalFrontier <= internalFrontier {
		c.frontier = externalFrontier
		c.assembleNextState(externalFrontier, bag)
		ret := moment.SignalUpdate(externalFrontier)
		if bag.ShouldMeasure() {
			ret, _ = ret.Merge(moment.Measurement(externalFrontier))
		}
		if externalFrontier == internalFrontier {
			if internalEvent, ok := c.queue.Pop(); ok {
				ret, _ = ret.Merge(internalEvent)
			}
		}
		return ret, true
	}

	c.frontier = internalFrontier
	return c.queue.Pop()
}

// UpdateContext is the borrow handed to every processor/measurement update
// call. Exactly one exists at a time within a driver iteration.
type UpdateContext[E WithTimestamp] struct {
	queue                    *queue.InternalEventQueue
	iter                     *peekiter.MultiPeek[E]
	frontier                 Timestamp
	mergeSimultaneousMoments bool
}

// Frontier returns the current time.
func (uc *UpdateContext[E]) Frontier() Timestamp { return uc.frontier }

// Offset returns the look-ahead adapter's offset: items delivered plus
// items currently buffered.
func (uc *UpdateContext[E]) Offset() int { return uc.iter.Offset() }

// ScheduleSignalUpdate enqueues a signal-update moment at frontier+delta,
// saturating on overflow.
func (uc *UpdateContext[E]) ScheduleSignalUpdate(delta Duration) {
	uc.queue.ScheduleSignalUpdate(lsptime.AddSaturating(uc.frontier, delta))
}

// ScheduleMeasurement enqueues a measurement moment at frontier+delta,
// saturating on overflow.
func (uc *UpdateContext[E]) ScheduleMeasurement(delta Duration) {
	uc.queue.ScheduleMeasurement(lsptime.AddSaturating(uc.frontier, delta))
}

// PeekFold forwards to the look-ahead adapter's PeekFold, letting a
// processor look arbitrarily far ahead in the external stream without
// consuming it.
func (uc *UpdateContext[E]) PeekFold(init any, f func(acc any, item E) (any, bool)) any {
	return uc.iter.PeekFold(init, f)
}
