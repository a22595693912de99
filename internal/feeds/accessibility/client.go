// Package accessibility queries the accessibility feed for toilets near a point.
package accessibility

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds"
	"github.com/tonari-app/tonari/internal/upstream"
)

const Feed = "accessibility"

type Query struct {
	Position                          model.Position
	Radius                            int
	IncludePlacesWithoutAccessibility bool
	// IncludeRelated asks the feed to embed source records (debugging).
	IncludeRelated bool
}

type Client struct {
	up    *upstream.Client
	base  string
	token string
}

func New(baseURL, token string, hc *http.Client, log *slog.Logger) *Client {
	return &Client{
		up:    upstream.New(Feed, hc, log),
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("X-App-Token", c.token)
	return h
}

func (c *Client) endpoint(path string, params url.Values) string {
	return c.base + "/" + path + ".json?" + params.Encode()
}

func PlaceInfosParams(q Query) url.Values {
	v := url.Values{}
	v.Set("latitude", model.FormatCoord(q.Position.Lat))
	v.Set("longitude", model.FormatCoord(q.Position.Lon))
	v.Set("accuracy", strconv.Itoa(q.Radius))
	v.Set("includeCategories", "toilets")
	if q.IncludePlacesWithoutAccessibility {
		v.Set("includePlacesWithoutAccessibility", "1")
	} else {
		v.Set("includePlacesWithoutAccessibility", "0")
	}
	if q.IncludeRelated {
		v.Set("includeRelated", "source")
	}
	return v
}

// PlaceInfos runs the radius search.
func (c *Client) PlaceInfos(ctx context.Context, q Query) (*feeds.FeatureCollection, error) {
	var fc feeds.FeatureCollection
	if err := c.up.GetJSON(ctx, c.endpoint("place-infos", PlaceInfosParams(q)), c.header(), &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Images lists image urls attached to a place. A non-OK answer is an empty list.
func (c *Client) Images(ctx context.Context, originalID string) ([]string, error) {
	v := url.Values{}
	v.Set("context", "place")
	v.Set("objectId", originalID)

	var body struct {
		Images any `json:"images"`
	}
	if err := c.up.GetJSON(ctx, c.endpoint("images", v), c.header(), &body); err != nil {
		if errors.Is(err, upstream.ErrStatus) {
			return []string{}, nil
		}
		return nil, err
	}
	return feeds.URLs(body.Images), nil
}
