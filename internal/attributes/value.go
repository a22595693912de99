package attributes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Kind uint8

const (
	KindBool Kind = iota + 1
	KindEnum
	// KindOpaque holds a value the catalog does not recognise; it is passed
	// through untouched on every read and write.
	KindOpaque
)

// Value is a known attribute value. Absence is modelled by the key missing
// from a Set, never by a zero Value.
type Value struct {
	kind Kind
	b    bool
	s    string
	raw  json.RawMessage
}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Enum(s string) Value { return Value{kind: KindEnum, s: s} }

func Opaque(raw json.RawMessage) Value {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindOpaque, raw: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsZero() bool { return v.kind == 0 }

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Enum() (string, bool) {
	return v.s, v.kind == KindEnum
}

func (v Value) Raw() json.RawMessage { return v.raw }

// Key is the label-table key of the value: "true"/"false" for booleans, the
// enum literal for enums and the compact JSON text for opaque values.
func (v Value) Key() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindEnum:
		return v.s
	case KindOpaque:
		var s string
		if json.Unmarshal(v.raw, &s) == nil {
			return s
		}
		return string(v.raw)
	default:
		return undefinedKey
	}
}

func (v Value) String() string { return v.Key() }

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindEnum:
		return v.s == o.s
	case KindOpaque:
		return bytes.Equal(v.raw, o.raw)
	}
	return true
}

// Any returns the plain Go form used when building request bodies.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindEnum:
		return v.s
	case KindOpaque:
		return v.raw
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindEnum:
		return json.Marshal(v.s)
	case KindOpaque:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes without catalog context: booleans and strings become
// Bool/Enum and every other shape is kept opaque. Set.UnmarshalJSON refines
// this per attribute name.
func (v *Value) UnmarshalJSON(b []byte) error {
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return fmt.Errorf("decode attribute value: %w", err)
	}
	switch t := x.(type) {
	case bool:
		*v = Bool(t)
	case string:
		*v = Enum(t)
	case nil:
		*v = Value{}
	default:
		*v = Opaque(b)
	}
	return nil
}
