// Package geocode resolves a position to a street address through a
// Nominatim-compatible reverse geocoder.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/upstream"
)

const Feed = "geocode"

// DefaultLanguages renders addresses the way German street signs read them.
var DefaultLanguages = []language.Tag{language.German}

type Client struct {
	up     *upstream.Client
	base   string
	key    string
	accept string
}

// New builds a reverse geocoder asking for addresses in langs, most preferred
// first. Empty langs means DefaultLanguages.
func New(baseURL, key string, langs []language.Tag, hc *http.Client, log *slog.Logger) *Client {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &Client{up: upstream.New(Feed, hc, log), base: baseURL, key: key, accept: acceptLanguage(langs)}
}

// ParseLanguages reads an Accept-Language style list such as "de-AT,en;q=0.5"
// into tags ordered by preference. An empty string gives DefaultLanguages.
func ParseLanguages(s string) ([]language.Tag, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultLanguages, nil
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil {
		return nil, fmt.Errorf("geocoder languages %q: %w", s, err)
	}
	if len(tags) == 0 {
		return DefaultLanguages, nil
	}
	return tags, nil
}

func acceptLanguage(tags []language.Tag) string {
	parts := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		s := t.String()
		if s == "und" || seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

type Address struct {
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
	Pedestrian  string `json:"pedestrian"`
	Footway     string `json:"footway"`
}

// Line picks the most specific street line available.
func (a *Address) Line() *string {
	if a == nil {
		return nil
	}
	var s string
	switch {
	case a.Road != "" && a.HouseNumber != "":
		s = a.Road + " " + a.HouseNumber
	case a.Road != "":
		s = a.Road
	case a.Pedestrian != "":
		s = a.Pedestrian
	case a.Footway != "":
		s = a.Footway
	default:
		return nil
	}
	return &s
}

// Reverse returns the street line near pos, or nil when none is known.
func (c *Client) Reverse(ctx context.Context, pos model.Position) (*string, error) {
	v := url.Values{}
	v.Set("key", c.key)
	v.Set("format", "jsonv2")
	v.Set("lat", model.FormatCoord(pos.Lat))
	v.Set("lon", model.FormatCoord(pos.Lon))
	if c.accept != "" {
		v.Set("accept-language", c.accept)
	}

	var resp struct {
		Address *Address `json:"address"`
	}
	if err := c.up.GetJSON(ctx, c.base+"?"+v.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Address.Line(), nil
}
