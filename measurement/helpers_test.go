package measurement

import (
	"testing"

	"github.com/shapeless/lspgo/lspcontext"
)

type tick struct{ ts lspcontext.Timestamp }

func (t tick) Timestamp() lspcontext.Timestamp { return t.ts }

type tickSource struct {
	n   int
	pos int
}

func (s *tickSource) Next() (tick, bool) {
	if s.pos >= s.n {
		return tick{}, false
	}
	t := tick{ts: lspcontext.Timestamp(s.pos)}
	s.pos++
	return t, true
}

type fixedTicks struct {
	ts  []lspcontext.Timestamp
	pos int
}

func (s *fixedTicks) Next() (tick, bool) {
	if s.pos >= len(s.ts) {
		return tick{}, false
	}
	v := tick{ts: s.ts[s.pos]}
	s.pos++
	return v, true
}

type nopBag struct{}

func (nopBag) Patch(tick)          {}
func (nopBag) ShouldMeasure() bool { return false }

func newTickContext(n int) *lspcontext.Context[tick] {
	return lspcontext.New[tick](&tickSource{n: n}, true)
}

func advance(t *testing.T, ctx *lspcontext.Context[tick]) {
	t.Helper()
	if _, ok := ctx.NextEvent(nopBag{}); !ok {
		t.Fatal("context exhausted")
	}
}
