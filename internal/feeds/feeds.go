// Package feeds holds the decode boundary shared by the upstream feed clients.
package feeds

import (
	"encoding/json"
)

// Feature is one upstream record as a generic JSON tree.
type Feature = map[string]any

// FeatureCollection is the envelope returned by the accessibility feed and the
// backend. Shapes that do not match are decoded as absent rather than failing.
type FeatureCollection struct {
	Result       string    `json:"result,omitempty"`
	FeatureCount *float64  `json:"featureCount,omitempty"`
	Features     []Feature `json:"features"`
}

func (fc *FeatureCollection) UnmarshalJSON(b []byte) error {
	var raw struct {
		Result       any               `json:"result"`
		FeatureCount any               `json:"featureCount"`
		Features     []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		// a non-array "features" is the only shape error we tolerate
		var loose map[string]any
		if err2 := json.Unmarshal(b, &loose); err2 != nil {
			return err
		}
		raw.Result, raw.FeatureCount = loose["result"], loose["featureCount"]
	}

	*fc = FeatureCollection{}
	if s, ok := raw.Result.(string); ok {
		fc.Result = s
	}
	if n, ok := raw.FeatureCount.(float64); ok {
		fc.FeatureCount = &n
	}
	for _, r := range raw.Features {
		var f Feature
		if err := json.Unmarshal(r, &f); err != nil || f == nil {
			continue
		}
		fc.Features = append(fc.Features, f)
	}
	return nil
}

// Successful reports whether the backend answered with usable features. An
// absent count is not zero.
func (fc *FeatureCollection) Successful() bool {
	if fc == nil || fc.Result != "success" {
		return false
	}
	return fc.FeatureCount == nil || *fc.FeatureCount != 0
}

// First returns the first feature, if any.
func (fc *FeatureCollection) First() (Feature, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, false
	}
	return fc.Features[0], true
}

// Props returns the "properties" object of f.
func Props(f Feature) map[string]any {
	p, _ := f["properties"].(map[string]any)
	return p
}

// URLs collects the string "url" field of each object in list.
func URLs(list any) []string {
	items, _ := list.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if u, ok := m["url"].(string); ok && u != "" {
			out = append(out, u)
		}
	}
	return out
}
