package wbelement

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Descriptor is one serialized whiteboard element, as produced
// by fabric `toObject`. Only the type tag is interpreted at decoding
// time; the other properties are kept raw and read by the builder
// registered for the type.
type Descriptor struct {
	props map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler. The input must be a JSON object.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("wbelement: element descriptor is null")
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal(data, &props); err != nil {
		return err
	}
	d.props = props
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.props == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.props)
}

// NewDescriptor builds a descriptor from Go values, which must be
// JSON serializable.
func NewDescriptor(props map[string]interface{}) (Descriptor, error) {
	d := Descriptor{props: make(map[string]json.RawMessage, len(props))}
	for k, v := range props {
		raw, err := json.Marshal(v)
		if err != nil {
			return Descriptor{}, err
		}
		d.props[k] = raw
	}
	return d, nil
}

// Type returns the type tag, or an empty string if it is
// missing or not a string.
func (d Descriptor) Type() string {
	s, _ := d.String("type", "")
	return s
}

// Has returns true if the property is present and not null.
func (d Descriptor) Has(key string) bool {
	raw, ok := d.props[key]
	return ok && !isNull(raw)
}

// Raw returns the undecoded property, or nil.
func (d Descriptor) Raw(key string) json.RawMessage {
	raw := d.props[key]
	if isNull(raw) {
		return nil
	}
	return raw
}

// With returns a copy of the descriptor with `key` set to `value`.
// The receiver is not modified.
func (d Descriptor) With(key string, value interface{}) Descriptor {
	raw, err := json.Marshal(value)
	if err != nil {
		return d
	}
	out := Descriptor{props: make(map[string]json.RawMessage, len(d.props)+1)}
	for k, v := range d.props {
		out.props[k] = v
	}
	out.props[key] = raw
	return out
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func invalid(key string, err error) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidProperty, key, err)
}

// Decode unmarshals the property into `v`. Missing properties are
// not an error and leave `v` untouched.
func (d Descriptor) Decode(key string, v interface{}) error {
	raw := d.Raw(key)
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalid(key, err)
	}
	return nil
}

// Float returns the numeric property, or `def` if it is missing.
func (d Descriptor) Float(key string, def float64) (float64, error) {
	raw := d.Raw(key)
	if raw == nil {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return def, invalid(key, err)
	}
	return f, nil
}

// RequiredFloat is like Float but fails if the property is missing.
func (d Descriptor) RequiredFloat(key string) (float64, error) {
	if !d.Has(key) {
		return 0, fmt.Errorf("%w %q", ErrMissingProperty, key)
	}
	return d.Float(key, 0)
}

// String returns the string property, or `def` if it is missing.
func (d Descriptor) String(key string, def string) (string, error) {
	raw := d.Raw(key)
	if raw == nil {
		return def, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def, invalid(key, err)
	}
	return s, nil
}

// Bool returns the boolean property, or `def` if it is missing.
func (d Descriptor) Bool(key string, def bool) (bool, error) {
	raw := d.Raw(key)
	if raw == nil {
		return def, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return def, invalid(key, err)
	}
	return b, nil
}
