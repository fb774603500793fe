// Package patch holds request field types for partial updates where a key that
// was never sent must stay distinguishable from a key sent as null.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an optional JSON value. The zero value means the key was absent.
type Field[T any] struct {
	Set   bool // key present in the payload
	Null  bool // key present with a JSON null
	Value T
}

// Some returns a field holding v, as if the caller had sent it.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a field explicitly cleared by the caller.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Present reports whether the caller supplied a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// Apply writes the value into dst when the caller supplied a non-null value.
func (f Field[T]) Apply(dst *T) {
	if f.Present() {
		*dst = f.Value
	}
}

// ApplyPtr handles nullable destinations: null clears, a value replaces.
func (f Field[T]) ApplyPtr(dst **T) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

// Ptr returns a pointer to the value, or nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}
