// Package peekiter implements the bounded look-ahead adapter the driver uses
// to examine upcoming external events without consuming them.
package peekiter

import "errors"

// errShortSource is returned by Restore when the underlying source yields
// fewer items than the checkpointed offset implies it should.
var errShortSource = errors.New("peekiter: source exhausted before reaching checkpointed offset")

// Source is the minimal external-event iterator contract: Next returns the
// next item and true, or the zero value and false once exhausted. Sources
// must yield items in non-decreasing timestamp order; the adapter never
// calls Next past exhaustion.
//
// Producer contract for coincident items: the adapter never reorders items
// sharing a timestamp. When the context's merge_simultaneous_moments policy
// is false, the first item in the stream at a given timestamp wins: it is
// the one applied at that moment, and each later item with the same
// timestamp is applied at a moment of its own. This is not checked at
// runtime.
type Source[T any] interface {
	Next() (T, bool)
}

// State is the serializable portion of a MultiPeek's position: how many
// items it has delivered or buffered, and how many of those are still
// sitting in the peek buffer. Restoring a MultiPeek from a State replays the
// underlying source: it drops offset-bufferedCount items, then re-buffers
// bufferedCount more.
type State struct {
	Offset        int `json:"offset"`
	BufferedCount int `json:"peek_buffer_size"`
}

// MultiPeek wraps a Source, buffering items examined via PeekN/PeekFold so
// that later Next calls return them in order before pulling the source
// again.
type MultiPeek[T any] struct {
	inner  Source[T]
	offset int
	buf    []T
}

// New wraps src in a MultiPeek with an empty look-ahead buffer.
func New[T any](src Source[T]) *MultiPeek[T] {
	return &MultiPeek[T]{inner: src}
}

// Offset returns the number of items delivered to the driver plus the
// number currently buffered.
func (mp *MultiPeek[T]) Offset() int { return mp.offset }

// Next returns the next item, draining the peek buffer first.
func (mp *MultiPeek[T]) Next() (T, bool) {
	if len(mp.buf) == 0 {
		item, ok := mp.inner.Next()
		if ok {
			mp.offset++
		}
		return item, ok
	}
	item := mp.buf[0]
	mp.buf = mp.buf[1:]
	return item, true
}

// PeekN returns the k-th upcoming item (1-indexed) without consuming it, or
// false if fewer than k items remain.
func (mp *MultiPeek[T]) PeekN(n int) (T, bool) {
	var zero T
	for len(mp.buf) < n {
		item, ok := mp.inner.Next()
		if !ok {
			return zero, false
		}
		mp.offset++
		mp.buf = append(mp.buf, item)
	}
	if n <= 0 {
		return zero, false
	}
	return mp.buf[n-1], true
}

// Peek is PeekN(1).
func (mp *MultiPeek[T]) Peek() (T, bool) {
	return mp.PeekN(1)
}

// PeekFold repeatedly extends the look-ahead buffer, folding f(accumulator,
// item) into a running accumulator, stopping the first time f returns false
// or the source is exhausted. It returns the final accumulator.
func (mp *MultiPeek[T]) PeekFold(init any, f func(acc any, item T) (any, bool)) any {
	acc := init
	for i := 1; ; i++ {
		item, ok := mp.PeekN(i)
		if !ok {
			break
		}
		next, cont := f(acc, item)
		if !cont {
			break
		}
		acc = next
	}
	return acc
}

// Patch captures the adapter's position for checkpointing.
func (mp *MultiPeek[T]) Patch() State {
	return State{Offset: mp.offset, BufferedCount: len(mp.buf)}
}

// Restore rebuilds the adapter's position over a freshly constructed source
// that starts at the same point the checkpoint was taken from: it drops
// state.Offset-state.BufferedCount items, then re-buffers BufferedCount more.
func Restore[T any](src Source[T], state State) (*MultiPeek[T], error) {
	mp := New(src)
	toDrop := state.Offset - state.BufferedCount
	for i := 0; i < toDrop; i++ {
		if _, ok := src.Next(); !ok {
			return nil, errShortSource
		}
	}
	for i := 0; i < state.BufferedCount; i++ {
		item, ok := src.Next()
		if !ok {
			return nil, errShortSource
		}
		mp.buf = append(mp.buf, item)
	}
	mp.offset = state.Offset
	return mp, nil
}
