package attributes

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestToDatabase_NestedPayload(t *testing.T) {
	got := ToDatabase(Set{
		WheelchairAccess: Enum("noSteps"),
		Fee:              Bool(true),
	})
	want := map[string]any{
		"properties": map[string]any{
			"accessibility": map[string]any{
				"accessibleWith": map[string]any{"wheelchair": "noSteps"},
				"fee":            true,
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestToDatabase_NeverEmitsIsOpen(t *testing.T) {
	got := ToDatabase(Set{IsOpen: Bool(true), Shower: Bool(false)})
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if s := string(b); s != `{"properties":{"accessibility":{"shower":false}}}` {
		t.Fatalf("payload=%s", s)
	}

	only := ToDatabase(Set{IsOpen: Bool(false)})
	if len(only) != 0 {
		t.Fatalf("isOpen-only set produced %v", only)
	}
}

func TestToDatabase_OpaquePassthrough(t *testing.T) {
	got := ToDatabase(Set{GrabRail: Opaque(json.RawMessage(`"diagonal"`))})
	b, _ := json.Marshal(got)
	if s := string(b); s != `{"properties":{"accessibility":{"grabRail":"diagonal"}}}` {
		t.Fatalf("payload=%s", s)
	}
}

func TestSetUnmarshal_ClassifiesPerAttribute(t *testing.T) {
	var s Set
	err := json.Unmarshal([]byte(`{
		"wheelchairAccess":"oneStep",
		"gender":"other",
		"fee":true,
		"spacious":"yes",
		"isOpen":null,
		"unknownThing":1
	}`), &s)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v, ok := s[WheelchairAccess].Enum(); !ok || v != "oneStep" {
		t.Fatalf("wheelchairAccess=%v", s[WheelchairAccess])
	}
	if s[Gender].Kind() != KindOpaque || s[Gender].Key() != "other" {
		t.Fatalf("gender should be opaque passthrough, got %+v", s[Gender])
	}
	if b, ok := s[Fee].Bool(); !ok || !b {
		t.Fatalf("fee=%v", s[Fee])
	}
	if s[Spacious].Kind() != KindOpaque {
		t.Fatalf("spacious should be opaque, got kind %d", s[Spacious].Kind())
	}
	if _, ok := s[IsOpen]; ok {
		t.Fatal("null must decode as absent")
	}
	if len(s) != 4 {
		t.Fatalf("len=%d want 4 (unknown keys dropped)", len(s))
	}

	out, _ := json.Marshal(s[Gender])
	if string(out) != `"other"` {
		t.Fatalf("opaque re-encode=%s", out)
	}
}

func TestDeepMerge_SourceWins(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	DeepMerge(dst, map[string]any{"a": map[string]any{"y": 3, "z": 4}, "b": map[string]any{"c": true}})

	want := map[string]any{
		"a": map[string]any{"x": 1, "y": 3, "z": 4},
		"b": map[string]any{"c": true},
	}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("got %#v", dst)
	}
}

func TestOverlay_MergesNestedObjects(t *testing.T) {
	s := Set{
		Fee:      Opaque(json.RawMessage(`{"amount":1,"note":{"a":"x"}}`)),
		GrabRail: Opaque(json.RawMessage(`"diagonal"`)),
		Spacious: Opaque(json.RawMessage(`{"width":90}`)),
		Shower:   Bool(false),
	}
	s.Overlay(Set{
		Fee:      Opaque(json.RawMessage(`{"currency":"EUR","note":{"b":"y"}}`)),
		GrabRail: Opaque(json.RawMessage(`{"side":"left"}`)),
		Spacious: Opaque(json.RawMessage(`"yes"`)),
		Shower:   Bool(true),
	})

	if got := string(s[Fee].Raw()); got != `{"amount":1,"currency":"EUR","note":{"a":"x","b":"y"}}` {
		t.Fatalf("fee=%s", got)
	}
	if got := string(s[GrabRail].Raw()); got != `{"side":"left"}` {
		t.Fatalf("scalar replaced by object: %s", got)
	}
	if got := string(s[Spacious].Raw()); got != `"yes"` {
		t.Fatalf("object replaced by scalar: %s", got)
	}
	if b, _ := s[Shower].Bool(); !b {
		t.Fatal("source must win for plain values")
	}
}

func TestLookupPath(t *testing.T) {
	var tree any
	_ = json.Unmarshal([]byte(`{"properties":{"accessibility":{"fee":false,"gender":null}}}`), &tree)

	v, ok := LookupPath(tree, []string{"properties", "accessibility", "fee"})
	if !ok || v != false {
		t.Fatalf("fee lookup=%v,%v", v, ok)
	}
	if _, ok := LookupPath(tree, []string{"properties", "accessibility", "gender"}); ok {
		t.Fatal("null leaf must be absent")
	}
	if _, ok := LookupPath(tree, []string{"properties", "accessibility", "fee", "deeper"}); ok {
		t.Fatal("walking through a scalar must fail")
	}
}

func TestSummary_OrderAndLimit(t *testing.T) {
	s := Set{
		Shower:           Bool(true),
		Fee:              Bool(false),
		IsOpen:           Bool(true),
		Gender:           Enum("unisex"),
		WheelchairAccess: Enum("noSteps"),
	}
	got := Summary(s, 3)
	if len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	names := []Name{got[0].Name, got[1].Name, got[2].Name}
	want := []Name{IsOpen, WheelchairAccess, Gender}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order=%v want %v", names, want)
	}

	all := Summary(s, 0)
	for _, b := range all {
		if b.Name == Fee {
			t.Fatal("explicit false flags are hidden")
		}
	}
	if len(all) != 4 {
		t.Fatalf("len=%d want 4", len(all))
	}
}
