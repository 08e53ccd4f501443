// Package checkpoint implements the driver's atomic snapshot/restore
// protocol: a checkpoint captures the context's position, the signal bag,
// and every node's opaque state, so a run can resume deterministically
// after a process restart given a replayable input iterator.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shapeless/lspgo/lspcontext"
	"github.com/shapeless/lspgo/peekiter"
)

// schemaVersion is persisted alongside the checkpoint's three parts so a
// restore can detect an incompatible on-disk format and fall back to a
// fresh start instead of failing on a generic unmarshal error.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Load when a checkpoint file was written
// by an incompatible schema version. Callers should treat this the same as
// a missing file: start fresh.
var ErrSchemaMismatch = errors.New("checkpoint: schema version mismatch")

// QueuedMoment is the serializable form of one pending moment.Moment: a
// timestamp plus which of the two flags it carries. moment.Moment itself
// has no exported fields to marshal directly.
type QueuedMoment struct {
	Timestamp       lspcontext.Timestamp `json:"timestamp"`
	SignalUpdate    bool                 `json:"signal_update"`
	Measurement     bool                 `json:"measurement"`
}

// ContextState is the serializable position of an lspcontext.Context: its
// frontier, merge policy, look-ahead offset/buffer size, and the internal
// queue's pending moments.
type ContextState struct {
	Frontier                 lspcontext.Timestamp `json:"frontier"`
	MergeSimultaneousMoments bool                 `json:"merge_simultaneous_moments"`
	IterState                peekiter.State       `json:"iter_state"`
	QueuedMoments            []QueuedMoment       `json:"queued_moments"`
}

// Checkpoint is the on-disk record of a run: context position, the signal
// bag's own serialization, and one opaque blob per node index.
type Checkpoint struct {
	SchemaVersion int                        `json:"schema_version"`
	Context       ContextState               `json:"context_state"`
	InputState    json.RawMessage            `json:"input_state"`
	Entries       map[int]json.RawMessage    `json:"entries"`
}

// New builds a Checkpoint ready to be populated and written.
func New(ctxState ContextState, inputState json.RawMessage, entries map[int]json.RawMessage) Checkpoint {
	if entries == nil {
		entries = map[int]json.RawMessage{}
	}
	return Checkpoint{SchemaVersion: schemaVersion, Context: ctxState, InputState: inputState, Entries: entries}
}

// Save writes the checkpoint to path atomically: it marshals to a temp
// file in the same directory, then renames over the destination so a
// reader never observes a partially written file.
func Save(path string, cp Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	return nil
}

// Load reads and validates a checkpoint file. A missing file or a schema
// version mismatch are both recoverable conditions: callers should treat
// either as "start fresh" rather than a fatal error.
func Load(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: unmarshal %s: %w", path, err)
	}
	if cp.SchemaVersion != schemaVersion {
		return Checkpoint{}, fmt.Errorf("%w: file has version %d, runtime expects %d", ErrSchemaMismatch, cp.SchemaVersion, schemaVersion)
	}
	return cp, nil
}

// NodeStateCodec is what every stateful node/combinator must provide so the
// driver can capture and restore it without knowing its concrete type: a
// way to serialize current state, and a way to apply a previously
// serialized state back onto the live node.
type NodeStateCodec interface {
	// MarshalNodeState returns the node's current state as a JSON blob; a
	// node with no meaningful state returns an empty object (see NullCodec).
	MarshalNodeState() (json.RawMessage, error)
	// UnmarshalNodeState applies a previously captured state blob.
	UnmarshalNodeState(data json.RawMessage) error
}
