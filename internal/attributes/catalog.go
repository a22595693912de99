// Package attributes holds the closed catalog of accessibility attributes and
// the mapping between client edits and the backend's nested document.
package attributes

type Name string

const (
	WheelchairAccess  Name = "wheelchairAccess"
	FacilityType      Name = "facilityType"
	IsOpen            Name = "isOpen"
	Fee               Name = "fee"
	Gender            Name = "gender"
	Key               Name = "key"
	Spacious          Name = "spacious"
	GrabRail          Name = "grabRail"
	LateralAccess     Name = "lateralAccess"
	BottomClearance   Name = "bottomClearance"
	SinkInsideCabin   Name = "sinkInsideCabin"
	ReachableControls Name = "reachableControls"
	EmergencyCall     Name = "emergencyCall"
	Shower            Name = "shower"
)

const undefinedKey = "undefined"

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Descriptor struct {
	Name Name `json:"name"`
	// Title is the heading shown in the edit dialog; empty for display-only
	// attributes.
	Title     string            `json:"title,omitempty"`
	Boolean   bool              `json:"boolean"`
	Values    []Option          `json:"values,omitempty"`
	Labels    map[string]string `json:"labels"`
	Path      []string          `json:"path,omitempty"`
	Persisted bool              `json:"persisted"`

	icons       map[string]string
	defaultIcon string
}

func accessibilityPath(leaf ...string) []string {
	return append([]string{"properties", "accessibility"}, leaf...)
}

func boolLabels(title string) map[string]string {
	return map[string]string{undefinedKey: title, "true": title, "false": title}
}

// display order; the edit dialog uses the same order minus isOpen
var catalog = func() []Descriptor {
	return []Descriptor{
		{
			Name:    IsOpen,
			Boolean: true,
			Labels: map[string]string{
				undefinedKey: "Opening Hours",
				"true":       "Open Now",
				"false":      "Closed",
			},
			icons:       map[string]string{"true": "openingHours-open", "false": "openingHours-closed"},
			defaultIcon: "openingHours-open",
		},
		{
			Name:  WheelchairAccess,
			Title: "Wheelchair-Accessible",
			Values: []Option{
				{"noSteps", "No Steps"},
				{"oneStep", "One Step"},
				{"multipleSteps", "Multiple Steps"},
			},
			Labels: map[string]string{
				undefinedKey:    "Wheelchair-Accessible",
				"noSteps":       "No Steps",
				"oneStep":       "One Step",
				"multipleSteps": "Multiple Steps",
			},
			Path:      accessibilityPath("accessibleWith", "wheelchair"),
			Persisted: true,
			icons: map[string]string{
				"noSteps":       "wheelchairAccess-noSteps",
				"oneStep":       "wheelchairAccess-oneStep",
				"multipleSteps": "wheelchairAccess-oneStep",
			},
			defaultIcon: "wheelchairAccess-noSteps",
		},
		{
			Name:  Gender,
			Title: "Gender",
			Values: []Option{
				{"female", "Female"},
				{"male", "Male"},
				{"unisex", "Unisex"},
			},
			Labels: map[string]string{
				undefinedKey: "Gender",
				"female":     "Female",
				"male":       "Male",
				"unisex":     "Unisex",
			},
			Path:      accessibilityPath("gender"),
			Persisted: true,
			icons: map[string]string{
				"female": "gender-female",
				"male":   "gender-male",
				"unisex": "gender-unisex",
			},
			defaultIcon: "gender-unisex",
		},
		{
			Name:  FacilityType,
			Title: "Facility Type",
			Values: []Option{
				{"public", "Public"},
				{"private", "Private"},
			},
			Labels: map[string]string{
				undefinedKey: "Facility Type",
				"public":     "Public",
				"private":    "Private",
			},
			Path:      accessibilityPath("facilityType"),
			Persisted: true,
			icons: map[string]string{
				"public":  "facilityType-public",
				"private": "facilityType-private",
			},
			defaultIcon: "facilityType-public",
		},
		{
			Name:  Key,
			Title: "Key",
			Values: []Option{
				{"euroKey", "Euro-Key"},
				{"radarKey", "Radar-Key"},
				{"askStaff", "Ask Staff"},
				{"none", "None"},
			},
			Labels: map[string]string{
				undefinedKey: "Key",
				"euroKey":    "Euro-key",
				"radarKey":   "Radar-key",
				"askStaff":   "Ask Staff",
				"none":       "No Key",
			},
			Path:      accessibilityPath("key"),
			Persisted: true,
			// any value other than none shows the key icon
			icons:       map[string]string{"none": "key-none"},
			defaultIcon: "key-any",
		},
		{Name: Fee, Title: "Fee", Boolean: true, Labels: boolLabels("Fee"), Path: accessibilityPath("fee"), Persisted: true, defaultIcon: "fee"},
		{Name: Spacious, Title: "Spacious", Boolean: true, Labels: boolLabels("Spacious"), Path: accessibilityPath("spacious"), Persisted: true, defaultIcon: "spacious"},
		{
			Name:  GrabRail,
			Title: "Grab Rail",
			Values: []Option{
				{"both", "Left and Right"},
				{"left", "Left"},
				{"right", "Right"},
				{"none", "None"},
			},
			Labels: map[string]string{
				undefinedKey: "Grab Rail",
				"both":       "Grab Rail (L&R)",
				"left":       "Grab Rail (L)",
				"right":      "Grab Rail (R)",
				"none":       "No Grab Rail",
			},
			Path:      accessibilityPath("grabRail"),
			Persisted: true,
			icons: map[string]string{
				"both":  "grabRail-both",
				"left":  "grabRail-left",
				"right": "grabRail-right",
				"none":  "grabRail-none",
			},
			defaultIcon: "grabRail-both",
		},
		{Name: LateralAccess, Title: "Lateral Access", Boolean: true, Labels: boolLabels("Lateral Access"), Path: accessibilityPath("lateralAccess"), Persisted: true, defaultIcon: "lateralAccess"},
		{Name: BottomClearance, Title: "Bottom Clearance", Boolean: true, Labels: boolLabels("Bottom Clearance"), Path: accessibilityPath("bottomClearance"), Persisted: true, defaultIcon: "bottomClearance"},
		{Name: SinkInsideCabin, Title: "Sink Inside Cabin", Boolean: true, Labels: boolLabels("Sink Inside Cabin"), Path: accessibilityPath("sinkInsideCabin"), Persisted: true, defaultIcon: "sinkInsideCabin"},
		{Name: ReachableControls, Title: "Reachable Controls", Boolean: true, Labels: boolLabels("Reachable Controls"), Path: accessibilityPath("reachableControls"), Persisted: true, defaultIcon: "reachableControls"},
		{Name: EmergencyCall, Title: "Emergency Call", Boolean: true, Labels: boolLabels("Emergency Call"), Path: accessibilityPath("emergencyCall"), Persisted: true, defaultIcon: "emergencyCall"},
		{Name: Shower, Title: "Shower", Boolean: true, Labels: boolLabels("Shower"), Path: accessibilityPath("shower"), Persisted: true, defaultIcon: "shower"},
	}
}()

var byName = func() map[Name]*Descriptor {
	m := make(map[Name]*Descriptor, len(catalog))
	for i := range catalog {
		m[catalog[i].Name] = &catalog[i]
	}
	return m
}()

// Catalog returns the descriptors in display order. The slice is shared;
// callers must not modify it.
func Catalog() []Descriptor { return catalog }

// Editable returns the descriptors offered in the edit dialog, in order.
func Editable() []Descriptor {
	out := make([]Descriptor, 0, len(catalog))
	for _, d := range catalog {
		if d.Title != "" {
			out = append(out, d)
		}
	}
	return out
}

func Lookup(n Name) (Descriptor, bool) {
	d, ok := byName[n]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

func Known(n Name) bool {
	_, ok := byName[n]
	return ok
}

func IsBoolean(n Name) bool {
	d, ok := byName[n]
	return ok && d.Boolean
}

// ValidValue reports whether s is one of the declared enum values of n.
func ValidValue(n Name, s string) bool {
	d, ok := byName[n]
	if !ok {
		return false
	}
	for _, o := range d.Values {
		if o.Value == s {
			return true
		}
	}
	return false
}

// Label is the display text of an attribute in the given state. A nil value
// means "unknown"; values without their own label fall back to it.
func Label(n Name, v *Value) string {
	d, ok := byName[n]
	if !ok {
		return ""
	}
	if v != nil && !v.IsZero() {
		if l, ok := d.Labels[v.Key()]; ok {
			return l
		}
	}
	return d.Labels[undefinedKey]
}

// Icon selects the icon name for an attribute state.
func Icon(n Name, v *Value) string {
	d, ok := byName[n]
	if !ok {
		return ""
	}
	if v != nil && !v.IsZero() {
		if icon, ok := d.icons[v.Key()]; ok {
			return icon
		}
	}
	return d.defaultIcon
}
