package data

import (
	"bytes"
	"encoding/json"
)

// Field is one value in a partial update. The zero Field is absent: the
// stored value is left alone. A Field decoded from JSON is present whenever
// its key appears, including as an explicit null, in which case it holds
// the zero value of T.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a present Field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

func (f Field[T]) IsSet() bool  { return f.set }
func (f Field[T]) IsNull() bool { return f.set && f.null }

// Get returns the value and whether the field is present.
func (f Field[T]) Get() (T, bool) { return f.value, f.set }

// Or returns the value if present, otherwise fallback.
func (f Field[T]) Or(fallback T) T {
	if f.set {
		return f.value
	}
	return fallback
}

func (f *Field[T]) UnmarshalJSON(bs []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(bs), []byte("null")) {
		var zero T
		f.value, f.null = zero, true
		return nil
	}
	f.null = false
	return json.Unmarshal(bs, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
