package data

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field that tells an absent key apart from an explicit
// null. Set is true whenever the key appeared in the body; Value is nil when
// it was null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only called for keys present in the body, null included.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Apply copies the field into dst when the key was present.
func (o Optional[T]) Apply(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}
