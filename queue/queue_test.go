package queue

import (
	"testing"

	"github.com/shapeless/lspgo/moment"
)

func TestInternalEventQueueCoalescing(t *testing.T) {
	q := New()
	q.ScheduleSignalUpdate(2)
	q.ScheduleMeasurement(2)
	q.ScheduleSignalUpdate(1)
	q.ScheduleMeasurement(10)

	if got := q.EarliestScheduledTime(); got != 1 {
		t.Fatalf("earliest = %d, want 1", got)
	}

	m, ok := q.Pop()
	if !ok || m.Timestamp() != 1 || !m.ShouldUpdateSignals() || m.ShouldTakeMeasurements() {
		t.Fatalf("pop 1 = %+v", m)
	}

	if got := q.EarliestScheduledTime(); got != 2 {
		t.Fatalf("earliest = %d, want 2", got)
	}

	m, ok = q.Pop()
	if !ok || m.Timestamp() != 2 || !m.ShouldUpdateSignals() || !m.ShouldTakeMeasurements() {
		t.Fatalf("pop 2 = %+v, want both flags set", m)
	}

	q.ScheduleMeasurement(5)
	if got := q.EarliestScheduledTime(); got != 5 {
		t.Fatalf("earliest = %d, want 5", got)
	}

	m, ok = q.Pop()
	if !ok || m != moment.Measurement(5) {
		t.Fatalf("pop = %+v, want measurement(5)", m)
	}

	m, ok = q.Pop()
	if !ok || m != moment.Measurement(10) {
		t.Fatalf("pop = %+v, want measurement(10)", m)
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}
}
