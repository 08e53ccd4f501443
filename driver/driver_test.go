package driver

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shapeless/lspgo/checkpoint"
	"github.com/shapeless/lspgo/instrumentation"
	"github.com/shapeless/lspgo/lspcontext"
)

type driverTick struct {
	ts    lspcontext.Timestamp
	value int
}

func (t driverTick) Timestamp() lspcontext.Timestamp { return t.ts }

type driverSource struct {
	items []driverTick
	pos   int
}

func (s *driverSource) Next() (driverTick, bool) {
	if s.pos >= len(s.items) {
		return driverTick{}, false
	}
	item := s.items[s.pos]
	s.pos++
	return item, true
}

type driverBag struct{ last int }

func (b *driverBag) Patch(t driverTick)  { b.last = t.value }
func (b *driverBag) ShouldMeasure() bool { return true }

func (b *driverBag) MarshalState() (json.RawMessage, error) { return json.Marshal(b.last) }
func (b *driverBag) UnmarshalState(data json.RawMessage) error {
	return json.Unmarshal(data, &b.last)
}

type counterNode struct{ count int }

func (n *counterNode) State() int  { return n.count }
func (n *counterNode) Patch(s int) { n.count = s }

type driverGraph struct {
	bag  *driverBag
	node *counterNode
}

func (g *driverGraph) UpdateSignals(ctx *lspcontext.UpdateContext[driverTick]) error {
	g.node.count++
	return nil
}

func (g *driverGraph) Measure(ctx *lspcontext.UpdateContext[driverTick]) (int, bool, error) {
	return g.bag.last, true, nil
}

func (g *driverGraph) NodeCodecs() map[int]checkpoint.NodeStateCodec {
	return map[int]checkpoint.NodeStateCodec{0: checkpoint.Codec[int](g.node)}
}

func newHarness(items []driverTick) (*driverBag, *driverGraph) {
	bag := &driverBag{}
	graph := &driverGraph{bag: bag, node: &counterNode{}}
	return bag, graph
}

func TestDriverRunDeliversEveryRecord(t *testing.T) {
	items := []driverTick{{ts: 0, value: 10}, {ts: 1, value: 20}, {ts: 2, value: 30}}
	bag, graph := newHarness(items)

	var got []int
	handler := func(record *int) error {
		got = append(got, *record)
		return nil
	}

	d := New[driverTick, int](&driverSource{items: items}, true, bag, graph, handler)
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []int{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if graph.node.count != 3 {
		t.Fatalf("expected node updated 3 times, got %d", graph.node.count)
	}
}

func TestDriverCheckpointCadence(t *testing.T) {
	items := []driverTick{{ts: 0, value: 1}, {ts: 1, value: 2}, {ts: 2, value: 3}}
	bag, graph := newHarness(items)

	path := filepath.Join(t.TempDir(), "run.checkpoint.json")
	handler := func(*int) error { return nil }

	d := New[driverTick, int](&driverSource{items: items}, true, bag, graph, handler,
		WithCheckpoint[driverTick, int](path, 1))
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cp, err := checkpoint.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp.Context.Frontier != 2 {
		t.Fatalf("got frontier %d, want 2", cp.Context.Frontier)
	}
	var nodeCount int
	if err := json.Unmarshal(cp.Entries[0], &nodeCount); err != nil {
		t.Fatalf("unmarshal node 0 state: %v", err)
	}
	if nodeCount != 3 {
		t.Fatalf("got node count %d, want 3", nodeCount)
	}
}

// TestDriverResumeFromExhaustedCheckpoint verifies that resuming a run whose
// checkpoint was taken after the external stream was fully consumed
// restores node/bag state correctly and immediately reports completion.
func TestDriverResumeFromExhaustedCheckpoint(t *testing.T) {
	items := []driverTick{{ts: 0, value: 1}, {ts: 1, value: 2}, {ts: 2, value: 3}}
	bag, graph := newHarness(items)

	path := filepath.Join(t.TempDir(), "run.checkpoint.json")
	handler := func(*int) error { return nil }

	d := New[driverTick, int](&driverSource{items: items}, true, bag, graph, handler)
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := d.Checkpoint(path); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	resumedBag := &driverBag{}
	resumedGraph := &driverGraph{bag: resumedBag, node: &counterNode{}}
	var resumedCalls int
	resumedHandler := func(*int) error {
		resumedCalls++
		return nil
	}

	resumed, err := Resume[driverTick, int](path, &driverSource{items: items}, resumedBag, resumedGraph, resumedHandler)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumedGraph.node.count != 3 {
		t.Fatalf("expected restored node count 3, got %d", resumedGraph.node.count)
	}
	if resumedBag.last != 3 {
		t.Fatalf("expected restored bag value 3, got %d", resumedBag.last)
	}

	if err := resumed.Run(); err != nil {
		t.Fatalf("Run after resume: %v", err)
	}
	if resumedCalls != 0 {
		t.Fatalf("expected no further records after resuming an exhausted stream, got %d", resumedCalls)
	}
}

type recordingHooks struct {
	instrumentation.NoOp
	iterations int
}

func (h *recordingHooks) DataLogicUpdateBegin() { h.iterations++ }

type hooksAwareGraph struct {
	driverGraph
	received instrumentation.Hooks
}

func (g *hooksAwareGraph) SetHooks(hooks instrumentation.Hooks) { g.received = hooks }

func TestDriverInstallsHooks(t *testing.T) {
	items := []driverTick{{ts: 0, value: 1}, {ts: 1, value: 2}}
	bag := &driverBag{}
	graph := &hooksAwareGraph{driverGraph: driverGraph{bag: bag, node: &counterNode{}}}
	hooks := &recordingHooks{}

	d := New[driverTick, int](&driverSource{items: items}, true, bag, graph, func(*int) error { return nil },
		WithHooks[driverTick, int](hooks))
	if graph.received != hooks {
		t.Fatal("expected driver to hand its hooks to a HooksAware graph")
	}
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// one begin per processed moment plus the final exhausted probe
	if hooks.iterations != 3 {
		t.Fatalf("expected 3 iteration brackets, got %d", hooks.iterations)
	}
}
