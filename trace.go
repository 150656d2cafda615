package menu

import (
	"context"
	"encoding/json"
)

// ValueTrace reports where an item's value came from and where it is saved.
type ValueTrace struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Origin    string `json:"origin"`
	Persisted bool   `json:"persisted"`
	Group     string `json:"group"`
	Key       string `json:"key"`
	Value     any    `json:"value,omitempty"`
}

// Trace describes the item's current value. Persisted reports whether the
// group file currently holds an entry for the item's key.
func (it Item) Trace() ValueTrace {
	if it.m == nil {
		return ValueTrace{}
	}
	m := it.m
	m.mu.Lock()
	n := m.item(it.id)
	if n == nil {
		m.mu.Unlock()
		return ValueTrace{}
	}
	trace := ValueTrace{
		Path:   m.itemPath(it.id),
		Kind:   n.cell.kind.String(),
		Origin: n.cell.origin.String(),
		Group:  m.groupOf(n),
		Key:    persistKey(n.display, n.name),
		Value:  plainValue(n.cell.value),
	}
	m.mu.Unlock()

	_, ok, err := m.cache.Lookup(context.Background(), trace.Group, trace.Key)
	if err != nil {
		m.logError("trace", ErrorFileIO, trace.Group, err)
	}
	trace.Persisted = ok
	return trace
}

// ToJSON encodes the trace.
func (t ValueTrace) ToJSON() ([]byte, error) {
	type alias ValueTrace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (ValueTrace, error) {
	type alias ValueTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return ValueTrace{}, err
	}
	return ValueTrace(trace), nil
}
