package processor

import (
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/lsptime"
)

// SlidingWindow is a fixed-capacity FIFO of the last N values pushed on
// edges of a trigger, with the item bumped out of the front retained
// separately so emit functions that need "what just left" (e.g. a running
// sum) don't have to diff two full snapshots.
type SlidingWindow[E lspcontext.WithTimestamp, T any, C comparable, Out any] struct {
	capacity      int
	queue         []T
	lastDequeued  T
	hasDequeued   bool
	lastControl   C
	hasControl    bool
	emit          func(queue []T, lastDequeued T, hasDequeued bool) Out
}

// NewSlidingWindow builds a count-based sliding window of the given
// capacity, using emit to compute the processor's output from the current
// queue contents and the most recently evicted item.
func NewSlidingWindow[E lspcontext.WithTimestamp, T any, C comparable, Out any](capacity int, emit func(queue []T, lastDequeued T, hasDequeued bool) Out) *SlidingWindow[E, T, C, Out] {
	return &SlidingWindow[E, T, C, Out]{capacity: capacity, emit: emit}
}

// Update pushes value onto the window on each edge of control, evicting the
// oldest item first once the window is at capacity.
func (w *SlidingWindow[E, T, C, Out]) Update(_ *lspcontext.UpdateContext[E], control C, value T) Out {
	edge := !w.hasControl || control != w.lastControl
	w.lastControl = control
	w.hasControl = true
	if edge {
		if len(w.queue) >= w.capacity && w.capacity > 0 {
			w.lastDequeued = w.queue[0]
			w.hasDequeued = true
			w.queue = w.queue[1:]
		}
		w.queue = append(w.queue, value)
	}
	return w.emit(w.queue, w.lastDequeued, w.hasDequeued)
}

// SlidingWindowState is the serializable state of a SlidingWindow.
type SlidingWindowState[T any, C comparable] struct {
	Queue        []T  `json:"queue"`
	LastDequeued T    `json:"last_dequeued"`
	HasDequeued  bool `json:"has_dequeued"`
	LastControl  C    `json:"last_control"`
	HasControl   bool `json:"has_control"`
}

// Patch restores the window from a checkpoint.
func (w *SlidingWindow[E, T, C, Out]) Patch(state SlidingWindowState[T, C]) {
	w.queue = append([]T(nil), state.Queue...)
	w.lastDequeued = state.LastDequeued
	w.hasDequeued = state.HasDequeued
	w.lastControl = state.LastControl
	w.hasControl = state.HasControl
}

// State returns the window's current serializable state.
func (w *SlidingWindow[E, T, C, Out]) State() SlidingWindowState[T, C] {
	return SlidingWindowState[T, C]{
		Queue:        append([]T(nil), w.queue...),
		LastDequeued: w.lastDequeued,
		HasDequeued:  w.hasDequeued,
		LastControl:  w.lastControl,
		HasControl:   w.hasControl,
	}
}

// timedItem pairs a buffered value with the frontier at which it entered
// the time-based window.
type timedItem[T any] struct {
	Value     T                    `json:"value"`
	Timestamp lspcontext.Timestamp `json:"timestamp"`
}

// SlidingTimeWindow retains items pushed strictly within the trailing
// windowSize of the current frontier, dropping anything windowSize or
// older on every update and re-scheduling its own wake-up so evictions
// happen even when no new external event arrives.
type SlidingTimeWindow[E lspcontext.WithTimestamp, T any, C comparable, Out any] struct {
	windowSize   lspcontext.Duration
	queue        []timedItem[T]
	lastDequeued T
	hasDequeued  bool
	lastControl  C
	hasControl   bool
	emit         func(queue []timedItem[T], lastDequeued T, hasDequeued bool) Out
}

// NewSlidingTimeWindow builds a time-based sliding window retaining the
// trailing windowSize of pushed values.
func NewSlidingTimeWindow[E lspcontext.WithTimestamp, T any, C comparable, Out any](windowSize lspcontext.Duration, emit func(queue []timedItem[T], lastDequeued T, hasDequeued bool) Out) *SlidingTimeWindow[E, T, C, Out] {
	return &SlidingTimeWindow[E, T, C, Out]{windowSize: windowSize, emit: emit}
}

// Update evicts every item aged windowSize or more, always schedules the
// next eviction check at frontier+windowSize, and pushes value on each
// edge of control.
func (w *SlidingTimeWindow[E, T, C, Out]) Update(ctx *lspcontext.UpdateContext[E], control C, value T) Out {
	now := ctx.Frontier()
	for len(w.queue) > 0 && lsptime.Sub(now, w.queue[0].Timestamp) >= w.windowSize {
		w.lastDequeued = w.queue[0].Value
		w.hasDequeued = true
		w.queue = w.queue[1:]
	}
	ctx.ScheduleSignalUpdate(w.windowSize)

	edge := !w.hasControl || control != w.lastControl
	w.lastControl = control
	w.hasControl = true
	if edge {
		w.queue = append(w.queue, timedItem[T]{Value: value, Timestamp: now})
	}
	return w.emit(w.queue, w.lastDequeued, w.hasDequeued)
}

// SlidingTimeWindowState is the serializable state of a SlidingTimeWindow.
type SlidingTimeWindowState[T any, C comparable] struct {
	Queue        []timedItem[T] `json:"queue"`
	LastDequeued T              `json:"last_dequeued"`
	HasDequeued  bool           `json:"has_dequeued"`
	LastControl  C              `json:"last_control"`
	HasControl   bool           `json:"has_control"`
}

// Patch restores the window from a checkpoint.
func (w *SlidingTimeWindow[E, T, C, Out]) Patch(state SlidingTimeWindowState[T, C]) {
	w.queue = append([]timedItem[T](nil), state.Queue...)
	w.lastDequeued = state.LastDequeued
	w.hasDequeued = state.HasDequeued
	w.lastControl = state.LastControl
	w.hasControl = state.HasControl
}

// State returns the window's current serializable state.
func (w *SlidingTimeWindow[E, T, C, Out]) State() SlidingTimeWindowState[T, C] {
	return SlidingTimeWindowState[T, C]{
		Queue:        append([]timedItem[T](nil), w.queue...),
		LastDequeued: w.lastDequeued,
		HasDequeued:  w.hasDequeued,
		LastControl:  w.lastControl,
		HasControl:   w.hasControl,
	}
}
