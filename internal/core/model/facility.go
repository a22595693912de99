package model

import (
	"time"

	"github.com/tonari-app/tonari/internal/attributes"
)

type Features struct {
	Coord Position `json:"coord"`
	// Distance in whole meters from the searched position.
	Distance float64 `json:"distance"`
	Name     string  `json:"name"`
	ID       ID      `json:"id"`
}

type Facility struct {
	Attributes attributes.Set `json:"attributes"`
	Features   Features       `json:"features"`
}

// WithAttributes returns a copy of f whose attribute set is replaced.
func (f Facility) WithAttributes(a attributes.Set) Facility {
	f.Attributes = a.Clone()
	return f
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexByID returns the position of the facility with the given id.
func IndexByID(fs []Facility, id ID) (int, bool) {
	for i := range fs {
		if fs[i].Features.ID.Equal(id) {
			return i, true
		}
	}
	return 0, false
}
