package checkpoint

import "encoding/json"

// stateful is satisfied by every processor/measurement in this module:
// each declares a State() accessor and a Patch(S) restorer. Combinators
// recurse into their inner node's codec separately; the wiring is explicit
// at call sites (driver registration), not implicit here.
type stateful[S any] interface {
	State() S
	Patch(S)
}

// codecAdapter turns any stateful[S] node into a NodeStateCodec by
// marshaling/unmarshaling its declared state type through encoding/json.
type codecAdapter[S any] struct {
	node stateful[S]
}

// Codec wraps node (any processor/measurement following the State()/Patch()
// convention) so it can be registered with a driver's node table for
// checkpointing.
func Codec[S any](node stateful[S]) NodeStateCodec {
	return codecAdapter[S]{node: node}
}

// MarshalNodeState serializes the node's current State().
func (c codecAdapter[S]) MarshalNodeState() (json.RawMessage, error) {
	return json.Marshal(c.node.State())
}

// UnmarshalNodeState deserializes data into the node's state type and
// applies it via Patch.
func (c codecAdapter[S]) UnmarshalNodeState(data json.RawMessage) error {
	var state S
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	c.node.Patch(state)
	return nil
}

// NullCodec is the codec for nodes with no meaningful state (pure mappers,
// constant generators): Marshal produces an empty object, Unmarshal is a
// no-op.
type NullCodec struct{}

// MarshalNodeState returns an empty JSON object.
func (NullCodec) MarshalNodeState() (json.RawMessage, error) { return json.RawMessage(`{}`), nil }

// UnmarshalNodeState does nothing.
func (NullCodec) UnmarshalNodeState(json.RawMessage) error { return nil }
