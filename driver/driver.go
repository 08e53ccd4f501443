// Package driver implements the outer control loop: it repeatedly asks the
// LSP context for the next moment, runs the node graph in topological order
// on signal-update moments, reads measurements on measurement moments,
// optionally emits a metrics record, and periodically writes a checkpoint.
// The DSL front-end and the codegen that produces a concrete Graph
// implementation live outside this module.
package driver

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shapeless/lspgo/checkpoint"
	"github.com/shapeless/lspgo/instrumentation"
	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/peekiter"
	"github.com/shapeless/lspgo/signalbag"
)

// Graph is the contract a DSL-generated harness implements: invoke every
// processor node exactly once, in DAG order, on a signal-update moment; and
// compute every declared metric on a measurement moment, reporting whether
// the metrics record should actually be emitted (per the IR's optional
// output gate).
type Graph[E lspcontext.WithTimestamp, M any] interface {
	// UpdateSignals invokes every processor node once, in topological
	// order.
	UpdateSignals(ctx *lspcontext.UpdateContext[E]) error
	// Measure computes the metrics bag and reports whether it passes the
	// (possibly trivial) output gate.
	Measure(ctx *lspcontext.UpdateContext[E]) (bag M, shouldEmit bool, err error)
	// NodeCodecs returns one checkpoint.NodeStateCodec per stateful node,
	// keyed by node index, for checkpoint capture/restore.
	NodeCodecs() map[int]checkpoint.NodeStateCodec
}

// HooksAware is an optional capability a Graph can implement to receive the
// driver's instrumentation hooks. A generated graph brackets each node's
// Update with NodeUpdateBegin/NodeUpdateEnd and reports outputs via
// HandleNodeOutput; the driver itself only brackets whole iterations.
type HooksAware interface {
	SetHooks(instrumentation.Hooks)
}

// StatefulBag extends signalbag.Bag with the (de)serialization the
// checkpoint protocol needs to capture and restore it.
type StatefulBag[P any] interface {
	signalbag.Bag[P]
	MarshalState() (json.RawMessage, error)
	UnmarshalState(data json.RawMessage) error
}

// MetricsHandler is the caller-supplied sink invoked once per emitted
// metrics record. A returned error propagates out of Run.
type MetricsHandler[M any] func(*M) error

// Driver wires a Context, a signal bag, a Graph, and checkpoint/
// instrumentation collaborators into the outer loop.
type Driver[E lspcontext.WithTimestamp, M any] struct {
	ctx     *lspcontext.Context[E]
	bag     StatefulBag[E]
	graph   Graph[E, M]
	handler MetricsHandler[M]
	hooks   instrumentation.Hooks

	checkpointPath  string
	checkpointEvery int
	iterations      int
}

// Option configures a Driver at construction time.
type Option[E lspcontext.WithTimestamp, M any] func(*Driver[E, M])

// WithHooks installs an instrumentation.Hooks implementation. Default is
// instrumentation.NoOp{}.
func WithHooks[E lspcontext.WithTimestamp, M any](hooks instrumentation.Hooks) Option[E, M] {
	return func(d *Driver[E, M]) { d.hooks = hooks }
}

// WithCheckpoint enables periodic checkpoint writes to path every n driver
// iterations. n <= 0 disables checkpointing (the default).
func WithCheckpoint[E lspcontext.WithTimestamp, M any](path string, everyNIterations int) Option[E, M] {
	return func(d *Driver[E, M]) {
		d.checkpointPath = path
		d.checkpointEvery = everyNIterations
	}
}

// New builds a Driver over src (a fresh external-event source), starting
// with an empty signal bag and queue.
func New[E lspcontext.WithTimestamp, M any](
	src peekiter.Source[E],
	mergeSimultaneousMoments bool,
	bag StatefulBag[E],
	graph Graph[E, M],
	handler MetricsHandler[M],
	opts ...Option[E, M],
) *Driver[E, M] {
	d := &Driver[E, M]{
		ctx:     lspcontext.New[E](src, mergeSimultaneousMoments),
		bag:     bag,
		graph:   graph,
		handler: handler,
		hooks:   instrumentation.NoOp{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if hg, ok := any(graph).(HooksAware); ok {
		hg.SetHooks(d.hooks)
	}
	return d
}

// Resume builds a Driver by restoring from a previously written checkpoint
// at path. src must be a fresh, replayable external-event source starting
// from the same point the original run began from. A missing file or a
// schema mismatch is recoverable: the caller should fall back to New in
// that case rather than treat it as fatal.
func Resume[E lspcontext.WithTimestamp, M any](
	path string,
	src peekiter.Source[E],
	bag StatefulBag[E],
	graph Graph[E, M],
	handler MetricsHandler[M],
	opts ...Option[E, M],
) (*Driver[E, M], error) {
	cp, err := checkpoint.Load(path)
	if err != nil {
		return nil, err
	}
	ctx, err := checkpoint.RestoreContext[E](src, cp.Context)
	if err != nil {
		return nil, fmt.Errorf("driver: restore context: %w", err)
	}
	if err := bag.UnmarshalState(cp.InputState); err != nil {
		return nil, fmt.Errorf("driver: restore signal bag: %w", err)
	}
	for idx, codec := range graph.NodeCodecs() {
		data, ok := cp.Entries[idx]
		if !ok {
			continue
		}
		if err := codec.UnmarshalNodeState(data); err != nil {
			return nil, fmt.Errorf("driver: restore node %d: %w", idx, err)
		}
	}

	d := &Driver[E, M]{
		ctx:            ctx,
		bag:            bag,
		graph:          graph,
		handler:        handler,
		hooks:          instrumentation.NoOp{},
		checkpointPath: path,
	}
	for _, opt := range opts {
		opt(d)
	}
	if hg, ok := any(graph).(HooksAware); ok {
		hg.SetHooks(d.hooks)
	}
	return d, nil
}

// Run drives the loop to completion: it terminates (returning nil) as soon
// as the external stream is exhausted, without processing moments still
// pending in the internal queue. The only
// errors that propagate are the metrics handler's and those from the Graph
// itself; checkpoint write failures are logged but never halt the run.
func (d *Driver[E, M]) Run() error {
	for {
		d.hooks.DataLogicUpdateBegin()
		m, ok := d.ctx.NextEvent(d.bag)
		if !ok {
			d.hooks.DataLogicUpdateEnd()
			return nil
		}

		uc := d.ctx.BorrowUpdateContext()

		if m.ShouldUpdateSignals() {
			if err := d.graph.UpdateSignals(uc); err != nil {
				d.hooks.DataLogicUpdateEnd()
				return fmt.Errorf("driver: update signals: %w", err)
			}
		}

		if m.ShouldTakeMeasurements() {
			bag, shouldEmit, err := d.graph.Measure(uc)
			if err != nil {
				d.hooks.DataLogicUpdateEnd()
				return fmt.Errorf("driver: measure: %w", err)
			}
			if shouldEmit {
				if err := d.handler(&bag); err != nil {
					d.hooks.DataLogicUpdateEnd()
					return fmt.Errorf("driver: metrics handler: %w", err)
				}
			}
		}

		d.hooks.DataLogicUpdateEnd()
		d.iterations++

		if d.checkpointPath != "" && d.checkpointEvery > 0 && d.iterations%d.checkpointEvery == 0 {
			if err := d.writeCheckpoint(); err != nil {
				slog.Warn("driver: checkpoint write failed", "path", d.checkpointPath, "error", err)
			}
		}
	}
}

// Checkpoint writes a checkpoint to path immediately, regardless of
// cadence. Exposed so callers can force a checkpoint on graceful shutdown.
func (d *Driver[E, M]) Checkpoint(path string) error {
	return checkpoint.Save(path, d.buildCheckpoint())
}

func (d *Driver[E, M]) writeCheckpoint() error {
	return checkpoint.Save(d.checkpointPath, d.buildCheckpoint())
}

func (d *Driver[E, M]) buildCheckpoint() checkpoint.Checkpoint {
	inputState, err := d.bag.MarshalState()
	if err != nil {
		inputState = json.RawMessage(`null`)
	}
	entries := map[int]json.RawMessage{}
	for idx, codec := range d.graph.NodeCodecs() {
		data, err := codec.MarshalNodeState()
		if err != nil {
			continue
		}
		entries[idx] = data
	}
	return checkpoint.New(checkpoint.CaptureContext[E](d.ctx), inputState, entries)
}
