package models

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was supplied. A missing key and an
// explicit null both leave Set false.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value, o.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Apply copies the value into dst when it was supplied.
func (o Optional[T]) Apply(dst *T) bool {
	if o.Set {
		*dst = o.Value
	}
	return o.Set
}
