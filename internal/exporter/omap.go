package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OM is an insertion-ordered JSON object. Export key order is driven by the
// declared field-order tables, so plain maps (which marshal sorted) are
// useless here.
type OM struct {
	keys []string
	vals map[string]any
}

// NewOM returns an empty ordered object.
func NewOM() *OM {
	return &OM{vals: make(map[string]any)}
}

// Set appends or overwrites a key. Overwriting keeps the original position.
func (m *OM) Set(key string, value any) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Get returns the value for key.
func (m *OM) Get(key string) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Len returns the number of keys.
func (m *OM) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OM) Keys() []string {
	return m.keys
}

// MarshalJSON emits the object with keys in insertion order.
func (m *OM) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
