package sparse

import (
	"bytes"
	"encoding/json"
)

// Optional is a stream field that may be absent. The zero value is absent.
type Optional[T any] struct {
	value  T
	exists bool
}

// Some returns a present field.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, exists: true}
}

// None returns an absent field.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Unpack returns the value and whether it is present.
func (o Optional[T]) Unpack() (T, bool) {
	return o.value, o.exists
}

// Exists reports whether the field is present.
func (o Optional[T]) Exists() bool {
	return o.exists
}

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if !o.exists {
		return def
	}
	return o.value
}

// MarshalJSON writes null for an absent field.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.exists {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON reads null as absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
