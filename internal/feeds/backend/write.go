package backend

import (
	"context"
	"net/url"

	"github.com/tonari-app/tonari/internal/core/model"
)

// Radius sent along with will-visit telemetry.
const searchRadius = 1000

type createFacilityBody struct {
	CreateNewFacility bool    `json:"createNewFacility"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	Name              string  `json:"name"`
}

type updateFacilityBody struct {
	CreateNewFacility bool     `json:"createNewFacility"`
	ID                model.ID `json:"id"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	Name              any      `json:"name,omitempty"`
	Address           any      `json:"address,omitempty"`
	Accessibility     any      `json:"accessibility,omitempty"`
}

// CreateFacility registers a new facility at pos.
func (c *Client) CreateFacility(ctx context.Context, name string, pos model.Position) error {
	return c.up.PostJSON(ctx, c.url("facilities/set-facility", nil), createFacilityBody{
		CreateNewFacility: true,
		Lat:               pos.Lat,
		Lon:               pos.Lon,
		Name:              name,
	})
}

// UpdateFacility writes a nested database payload (see attributes.ToDatabase).
// Only its properties.name, properties.address and properties.accessibility
// subtrees are sent.
func (c *Client) UpdateFacility(ctx context.Context, id model.ID, pos model.Position, payload map[string]any) error {
	props, _ := payload["properties"].(map[string]any)
	return c.up.PostJSON(ctx, c.url("facilities/set-facility", nil), updateFacilityBody{
		CreateNewFacility: false,
		ID:                id,
		Lat:               pos.Lat,
		Lon:               pos.Lon,
		Name:              props["name"],
		Address:           props["address"],
		Accessibility:     props["accessibility"],
	})
}

type searchArea struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius int     `json:"radius"`
}

func (c *Client) WillVisit(ctx context.Context, id model.ID, search model.Position) error {
	return c.up.PostJSON(ctx, c.url("facilities/will-visit", nil), struct {
		ID     model.ID   `json:"id"`
		Search searchArea `json:"search"`
	}{
		ID:     id,
		Search: searchArea{Lat: search.Lat, Lon: search.Lon, Radius: searchRadius},
	})
}

func (c *Client) FlagImage(ctx context.Context, id model.ID, imageID string) error {
	return c.up.PostJSON(ctx, c.url("images/flag-image", nil), struct {
		ID      model.ID `json:"id"`
		ImageID string   `json:"imageId"`
	}{ID: id, ImageID: imageID})
}

func (c *Client) AddComment(ctx context.Context, id model.ID, pos model.Position, content string) error {
	return c.up.PostJSON(ctx, c.url("facilities/add-comment", nil), struct {
		ID      model.ID `json:"id"`
		Lat     float64  `json:"lat"`
		Lon     float64  `json:"lon"`
		Content string   `json:"content"`
	}{ID: id, Lat: pos.Lat, Lon: pos.Lon, Content: content})
}

// UploadImage posts an already prepared JPEG as multipart field "image".
func (c *Client) UploadImage(ctx context.Context, id model.ID, pos model.Position, jpeg []byte) error {
	v := url.Values{}
	v.Set("lat", model.FormatCoord(pos.Lat))
	v.Set("lon", model.FormatCoord(pos.Lon))
	return c.up.PostMultipart(ctx, c.url("images/upload/"+idPath(id), v), "image", "image.jpg", "image/jpeg", jpeg)
}
