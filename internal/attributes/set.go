package attributes

import (
	"encoding/json"
	"fmt"
)

// Set maps attribute names to known values. Keys outside the catalog are
// never stored.
type Set map[Name]Value

func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Set) Get(n Name) (Value, bool) {
	v, ok := s[n]
	return v, ok
}

// Overlay copies every value of src onto s, src winning on conflicts. Two
// object values are deep merged instead of replaced.
func (s Set) Overlay(src Set) {
	for k, v := range src {
		if merged, ok := mergeObjects(s[k], v); ok {
			s[k] = merged
			continue
		}
		s[k] = v
	}
}

func mergeObjects(dst, src Value) (Value, bool) {
	if dst.kind != KindOpaque || src.kind != KindOpaque {
		return Value{}, false
	}
	var dm, sm map[string]any
	if json.Unmarshal(dst.raw, &dm) != nil || dm == nil {
		return Value{}, false
	}
	if json.Unmarshal(src.raw, &sm) != nil || sm == nil {
		return Value{}, false
	}
	DeepMerge(dm, sm)
	b, err := json.Marshal(dm)
	if err != nil {
		return Value{}, false
	}
	return Value{kind: KindOpaque, raw: b}, true
}

func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Classify turns a decoded JSON value into a Value for attribute n. nil means
// absent. Values that do not fit the descriptor are kept opaque.
func Classify(n Name, x any) (Value, bool) {
	if x == nil {
		return Value{}, false
	}
	d, known := byName[n]
	switch t := x.(type) {
	case bool:
		if !known || d.Boolean {
			return Bool(t), true
		}
	case string:
		if known && !d.Boolean && ValidValue(n, t) {
			return Enum(t), true
		}
	}
	raw, err := json.Marshal(x)
	if err != nil {
		return Value{}, false
	}
	return Opaque(raw), true
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	out := make(Set, len(raw))
	for k, x := range raw {
		n := Name(k)
		if !Known(n) {
			continue
		}
		if v, ok := Classify(n, x); ok {
			out[n] = v
		}
	}
	*s = out
	return nil
}

// ToDatabase builds the backend's nested document for a set of edits. Every
// persisted attribute is written at its path; isOpen is never emitted.
func ToDatabase(s Set) map[string]any {
	result := map[string]any{}
	for _, d := range catalog {
		v, ok := s[d.Name]
		if !ok || !d.Persisted || len(d.Path) == 0 {
			continue
		}
		tree := map[string]any{}
		cur := tree
		for _, seg := range d.Path[:len(d.Path)-1] {
			next := map[string]any{}
			cur[seg] = next
			cur = next
		}
		cur[d.Path[len(d.Path)-1]] = v.Any()
		DeepMerge(result, tree)
	}
	return result
}

// DeepMerge merges src into dst. Nested maps are merged recursively; any
// other value in src replaces the one in dst.
func DeepMerge(dst, src map[string]any) {
	for k, sv := range src {
		sm, sIsMap := sv.(map[string]any)
		dm, dIsMap := dst[k].(map[string]any)
		if sIsMap && dIsMap {
			DeepMerge(dm, sm)
			continue
		}
		if sIsMap {
			cp := map[string]any{}
			DeepMerge(cp, sm)
			dst[k] = cp
			continue
		}
		dst[k] = sv
	}
}

// LookupPath walks path through a decoded JSON tree. Missing segments or
// non-object intermediates report false.
func LookupPath(tree any, path []string) (any, bool) {
	cur := tree
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

type Badge struct {
	Name  Name   `json:"name"`
	Value Value  `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Summary lists the present attributes in display order, skipping explicit
// false flags. limit <= 0 means no limit.
func Summary(s Set, limit int) []Badge {
	var out []Badge
	for _, d := range catalog {
		v, ok := s[d.Name]
		if !ok {
			continue
		}
		if b, isBool := v.Bool(); isBool && !b {
			continue
		}
		out = append(out, Badge{
			Name:  d.Name,
			Value: v,
			Label: Label(d.Name, &v),
			Icon:  Icon(d.Name, &v),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
