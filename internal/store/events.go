package store

import (
	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/model"
)

type Event interface {
	Name() string
}

type SetLastRequest struct{ Pos model.Position }

// ResetResults drops the result set while a search is in flight.
type ResetResults struct{}

type SearchResolved struct {
	Facilities []model.Facility
	Current    int
}

type ChooseFacility struct{ Index int }

type ImagesLoaded struct {
	ID   model.ID
	URLs []string
}

type CommentsLoaded struct {
	ID       model.ID
	Comments []model.Comment
}

type AddressLoaded struct {
	ID      model.ID
	Address *string
}

// AttributesUpdated replaces the attribute set of the facility with ID.
type AttributesUpdated struct {
	ID         model.ID
	Attributes attributes.Set
}

type SetFullscreen struct{ Fullscreen bool }

type SetIncludePlacesWithoutAccessibility struct{ Include bool }

// ResetSideCaches empties images, comments and addresses.
type ResetSideCaches struct{}

func (SetLastRequest) Name() string    { return "set_last_request" }
func (ResetResults) Name() string      { return "reset_results" }
func (SearchResolved) Name() string    { return "search_resolved" }
func (ChooseFacility) Name() string    { return "choose_facility" }
func (ImagesLoaded) Name() string      { return "images_loaded" }
func (CommentsLoaded) Name() string    { return "comments_loaded" }
func (AddressLoaded) Name() string     { return "address_loaded" }
func (AttributesUpdated) Name() string { return "attributes_updated" }
func (SetFullscreen) Name() string     { return "set_fullscreen" }
func (SetIncludePlacesWithoutAccessibility) Name() string {
	return "set_include_places_without_accessibility"
}
func (ResetSideCaches) Name() string { return "reset_side_caches" }
