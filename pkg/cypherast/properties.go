package cypherast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Properties maps property names to values and remembers insertion order.
type Properties struct {
	keys   []string
	values map[string]Value
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

// Set stores v under name. Re-setting a name keeps its original position.
func (p *Properties) Set(name string, v Value) {
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}

	p.values[name] = v
}

// Get returns the value stored under name.
func (p *Properties) Get(name string) (Value, bool) {
	if p == nil {
		return nil, false
	}

	v, ok := p.values[name]

	return v, ok
}

// Delete removes name.
func (p *Properties) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}

	delete(p.values, name)

	for idx, key := range p.keys {
		if key == name {
			p.keys = append(p.keys[:idx], p.keys[idx+1:]...)

			break
		}
	}
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}

	return len(p.keys)
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}

	out := make([]string, len(p.keys))
	copy(out, p.keys)

	return out
}

// Range calls fn for each property in order until fn returns false.
func (p *Properties) Range(fn func(name string, v Value) bool) {
	if p == nil {
		return
	}

	for _, key := range p.keys {
		if !fn(key, p.values[key]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (p *Properties) Clone() *Properties {
	out := NewProperties()

	p.Range(func(name string, v Value) bool {
		out.Set(name, v)

		return true
	})

	return out
}

// MarshalJSON renders the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	var err error

	p.Range(func(name string, v Value) bool {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		var key, val []byte

		key, err = json.Marshal(name)
		if err != nil {
			return false
		}

		val, err = json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("marshal property %q: %w", name, err)

			return false
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)

		return true
	})

	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
