// Package queue implements the driver's internal event queue: a min-heap of
// scheduled moments that greedily coalesces same-timestamp entries on pop.
package queue

import (
	"container/heap"

	"github.com/shapeless/lspgo/lsptime"
	"github.com/shapeless/lspgo/moment"
)

type heapEntry struct {
	m moment.Moment
}

type momentHeap []heapEntry

func (h momentHeap) Len() int { return len(h) }
func (h momentHeap) Less(i, j int) bool {
	return h[i].m.Timestamp() < h[j].m.Timestamp()
}
func (h momentHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *momentHeap) Push(x any) {
	*h = append(*h, x.(heapEntry))
}

func (h *momentHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// InternalEventQueue is a priority queue of future moments, ordered by
// ascending timestamp.
type InternalEventQueue struct {
	h momentHeap
}

// New returns an empty queue.
func New() *InternalEventQueue {
	return &InternalEventQueue{}
}

// ScheduleSignalUpdate enqueues a signal-update moment at ts.
func (q *InternalEventQueue) ScheduleSignalUpdate(ts lsptime.Timestamp) {
	heap.Push(&q.h, heapEntry{m: moment.SignalUpdate(ts)})
}

// ScheduleMeasurement enqueues a measurement moment at ts.
func (q *InternalEventQueue) ScheduleMeasurement(ts lsptime.Timestamp) {
	heap.Push(&q.h, heapEntry{m: moment.Measurement(ts)})
}

// EarliestScheduledTime returns the timestamp of the next moment, or
// lsptime.MaxTimestamp if the queue is empty.
func (q *InternalEventQueue) EarliestScheduledTime() lsptime.Timestamp {
	if len(q.h) == 0 {
		return lsptime.MaxTimestamp
	}
	return q.h[0].m.Timestamp()
}

// Snapshot returns every currently pending moment, in no particular order.
// Used by checkpointing to capture the queue's contents without draining
// it.
func (q *InternalEventQueue) Snapshot() []moment.Moment {
	out := make([]moment.Moment, len(q.h))
	for i, e := range q.h {
		out[i] = e.m
	}
	return out
}

// PushMoment re-enqueues a previously captured moment, used to restore a
// queue from a checkpoint snapshot.
func (q *InternalEventQueue) PushMoment(m moment.Moment) {
	heap.Push(&q.h, heapEntry{m: m})
}

// Pop removes the earliest moment and merges in every subsequent moment
// sharing its timestamp, returning the coalesced result. Returns false when
// the queue is empty.
func (q *InternalEventQueue) Pop() (moment.Moment, bool) {
	if len(q.h) == 0 {
		return moment.Moment{}, false
	}
	ret := heap.Pop(&q.h).(heapEntry).m
	for len(q.h) > 0 {
		next := q.h[0].m
		merged, ok := ret.Merge(next)
		if !ok {
			break
		}
		ret = merged
		heap.Pop(&q.h)
	}
	return ret, true
}
