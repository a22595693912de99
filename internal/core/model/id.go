package model

import "strings"

// ID names a facility within one upstream source.
type ID struct {
	SourceID   string `json:"sourceId"`
	OriginalID string `json:"originalId"`
}

func (id ID) String() string {
	return IDToStr(id)
}

// IDToStr is the map key form of an ID. OriginalID must not contain a space,
// otherwise IDFromStr cannot recover it.
func IDToStr(id ID) string {
	return id.SourceID + " " + id.OriginalID
}

func IDFromStr(s string) ID {
	parts := strings.Split(s, " ")
	var id ID
	if len(parts) > 0 {
		id.SourceID = parts[0]
	}
	if len(parts) > 1 {
		id.OriginalID = parts[1]
	}
	return id
}

func (id ID) Equal(o ID) bool {
	return id.SourceID == o.SourceID && id.OriginalID == o.OriginalID
}

func (id ID) IsZero() bool {
	return id.SourceID == "" && id.OriginalID == ""
}
