// Package scene models the host's scene graph: node kinds, formatting
// values that may be "mixed" across a text run, and the Host capability
// interface the extractor and the reconciliation engine depend on.
package scene

import (
	"bytes"
	"encoding/json"
)

// MixedSentinel is the wire form of a mixed value.
const MixedSentinel = "MIXED"

var mixedJSON = []byte(`"` + MixedSentinel + `"`)

type valueState uint8

const (
	stateAbsent valueState = iota
	stateSingle
	stateMixed
)

// Value holds a formatting property that is either absent, a single value
// shared by the whole run, or mixed.
type Value[T any] struct {
	v     T
	state valueState
}

// Single wraps a concrete value.
func Single[T any](v T) Value[T] {
	return Value[T]{v: v, state: stateSingle}
}

// Mixed marks a property that carries more than one distinct value.
func Mixed[T any]() Value[T] {
	return Value[T]{state: stateMixed}
}

func (v Value[T]) IsMixed() bool  { return v.state == stateMixed }
func (v Value[T]) IsAbsent() bool { return v.state == stateAbsent }

// Get returns the value and true only for Single.
func (v Value[T]) Get() (T, bool) {
	if v.state != stateSingle {
		var zero T
		return zero, false
	}
	return v.v, true
}

// OrElse returns the single value or def.
func (v Value[T]) OrElse(def T) T {
	if got, ok := v.Get(); ok {
		return got
	}
	return def
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	switch v.state {
	case stateMixed:
		return mixedJSON, nil
	case stateSingle:
		return json.Marshal(v.v)
	default:
		return []byte("null"), nil
	}
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value[T]{}
		return nil
	case bytes.Equal(data, mixedJSON):
		*v = Mixed[T]()
		return nil
	}
	var got T
	if err := json.Unmarshal(data, &got); err != nil {
		return err
	}
	*v = Single(got)
	return nil
}
