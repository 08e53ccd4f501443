package processor

import "github.com/shapeless/lspgo/lspcontext"

// LevelTriggeredLatch holds its last value until control goes true, at
// which point it copies value. An optional Retention policy forgets the
// value after it has gone unset for too long.
type LevelTriggeredLatch[E lspcontext.WithTimestamp, D any] struct {
	data      D
	retention Retention[D]
}

// NewLevelTriggeredLatch builds a latch that keeps a set value forever.
func NewLevelTriggeredLatch[E lspcontext.WithTimestamp, D any](initial D) *LevelTriggeredLatch[E, D] {
	return &LevelTriggeredLatch[E, D]{data: initial, retention: KeepForever[D]{}}
}

// NewLevelTriggeredLatchWithTTL builds a latch that forgets a set value
// ttl after it was last set, reverting to def.
func NewLevelTriggeredLatchWithTTL[E lspcontext.WithTimestamp, D any](initial, def D, ttl lspcontext.Duration) *LevelTriggeredLatch[E, D] {
	return &LevelTriggeredLatch[E, D]{data: initial, retention: NewTimeToLive(def, ttl)}
}

// Update applies one (set, value) input and returns the latch's output.
func (l *LevelTriggeredLatch[E, D]) Update(ctx *lspcontext.UpdateContext[E], set bool, value D) D {
	if set {
		l.data = value
		if delta, ok := l.retention.DropTimestamp(ctx.Frontier()); ok {
			ctx.ScheduleSignalUpdate(delta)
		}
	} else if dropped, ok := l.retention.ShouldDrop(ctx.Frontier()); ok {
		l.data = dropped
	}
	return l.data
}

// LevelTriggeredLatchState is the serializable form of a
// LevelTriggeredLatch: its stored value plus the retention policy's
// pending-expiry state, so a TTL latch restored mid-window forgets at the
// original expiry rather than immediately.
type LevelTriggeredLatchState[D any] struct {
	Data      D              `json:"data"`
	Retention RetentionState `json:"retention"`
}

// Patch restores the latch from a checkpoint.
func (l *LevelTriggeredLatch[E, D]) Patch(state LevelTriggeredLatchState[D]) {
	l.data = state.Data
	l.retention.Patch(state.Retention)
}

// State returns the latch's current serializable state.
func (l *LevelTriggeredLatch[E, D]) State() LevelTriggeredLatchState[D] {
	return LevelTriggeredLatchState[D]{Data: l.data, Retention: l.retention.State()}
}

// EdgeTriggeredLatch copies value into its stored data only when control
// differs from the last observed control (an edge), rather than on every
// update where control happens to be true.
type EdgeTriggeredLatch[E lspcontext.WithTimestamp, C comparable, D any] struct {
	lastControl C
	data        D
	retention   Retention[D]
}

// NewEdgeTriggeredLatch builds an edge-triggered latch that keeps a set
// value forever.
func NewEdgeTriggeredLatch[E lspcontext.WithTimestamp, C comparable, D any](initial D) *EdgeTriggeredLatch[E, C, D] {
	return &EdgeTriggeredLatch[E, C, D]{data: initial, retention: KeepForever[D]{}}
}

// NewEdgeTriggeredLatchWithTTL builds an edge-triggered latch that forgets
// a set value ttl after the last triggering edge.
func NewEdgeTriggeredLatchWithTTL[E lspcontext.WithTimestamp, C comparable, D any](initial, def D, ttl lspcontext.Duration) *EdgeTriggeredLatch[E, C, D] {
	return &EdgeTriggeredLatch[E, C, D]{data: initial, retention: NewTimeToLive(def, ttl)}
}

// Update applies one (control, value) input and returns the latch's
// output.
func (l *EdgeTriggeredLatch[E, C, D]) Update(ctx *lspcontext.UpdateContext[E], control C, value D) D {
	edge := control != l.lastControl
	l.lastControl = control
	if edge {
		l.data = value
		if delta, ok := l.retention.DropTimestamp(ctx.Frontier()); ok {
			ctx.ScheduleSignalUpdate(delta)
		}
	} else if dropped, ok := l.retention.ShouldDrop(ctx.Frontier()); ok {
		l.data = dropped
	}
	return l.data
}

// EdgeTriggeredLatchState is the serializable form of an
// EdgeTriggeredLatch: last control, stored value, and the retention
// policy's pending-expiry state.
type EdgeTriggeredLatchState[C comparable, D any] struct {
	LastControl C              `json:"last_control"`
	Data        D              `json:"data"`
	Retention   RetentionState `json:"retention"`
}

// Patch restores the latch from a checkpoint.
func (l *EdgeTriggeredLatch[E, C, D]) Patch(state EdgeTriggeredLatchState[C, D]) {
	l.lastControl = state.LastControl
	l.data = state.Data
	l.retention.Patch(state.Retention)
}

// State returns the latch's current serializable state.
func (l *EdgeTriggeredLatch[E, C, D]) State() EdgeTriggeredLatchState[C, D] {
	return EdgeTriggeredLatchState[C, D]{LastControl: l.lastControl, Data: l.data, Retention: l.retention.State()}
}
