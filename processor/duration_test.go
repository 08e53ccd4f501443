package processor

import (
	"testing"

	"github.com/shapeless/lspgo/lspcontext"
)

// TestDurationOfPreviousLevel verifies that the processor only reports a
// new duration on a level change, holding the cached value between changes.
func TestDurationOfPreviousLevel(t *testing.T) {
	ctx := newTickContext(20)
	dur := NewDurationOfPreviousLevel[tick, string]()

	steps := []struct {
		value string
		want  lspcontext.Duration
	}{
		{"a", 0},
		{"a", 0},
		{"a", 0},
		{"b", 3},
		{"b", 3},
		{"c", 2},
		{"c", 2},
		{"c", 2},
		{"c", 2},
		{"d", 4},
	}
	for i, s := range steps {
		advance(t, ctx)
		uc := ctx.BorrowUpdateContext()
		if got := dur.Update(uc, s.value); got != s.want {
			t.Fatalf("step %d (t=%d): got %d, want %d", i, i, got, s.want)
		}
	}
}

func TestDurationOfPreviousLevelRoundTrips(t *testing.T) {
	ctx := newTickContext(5)
	dur := NewDurationOfPreviousLevel[tick, int]()

	for i := 0; i < 3; i++ {
		advance(t, ctx)
		uc := ctx.BorrowUpdateContext()
		dur.Update(uc, i)
	}

	restored := NewDurationOfPreviousLevel[tick, int]()
	restored.Patch(dur.State())
	if restored.State() != dur.State() {
		t.Fatalf("round trip mismatch: %+v vs %+v", restored.State(), dur.State())
	}
}
