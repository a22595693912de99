// Package wheelmap reads photos from the crowdsourced mapping service.
package wheelmap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tonari-app/tonari/internal/upstream"
)

const (
	Feed = "wheelmap"

	// SourceID is the accessibility feed source whose original ids are
	// mapping-service node ids.
	SourceID = "LiBTS67TjmBcXdEmX"

	galleryType = "gallery_ipad"
)

type Client struct {
	up     *upstream.Client
	base   string
	apiKey string
}

func New(baseURL, apiKey string, hc *http.Client, log *slog.Logger) *Client {
	return &Client{up: upstream.New(Feed, hc, log), base: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type photosResponse struct {
	Photos []struct {
		Images []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"images"`
	} `json:"photos"`
}

// NodePhotos returns one gallery-sized url per photo of a node. Photos without
// a gallery rendition are skipped; a non-OK answer is an empty list.
func (c *Client) NodePhotos(ctx context.Context, nodeID string) ([]string, error) {
	v := url.Values{}
	v.Set("api_key", c.apiKey)
	u := c.base + "/nodes/" + url.PathEscape(nodeID) + "/photos?" + v.Encode()

	var resp photosResponse
	if err := c.up.GetJSON(ctx, u, nil, &resp); err != nil {
		if errors.Is(err, upstream.ErrStatus) {
			return []string{}, nil
		}
		return nil, err
	}

	out := make([]string, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		for _, img := range p.Images {
			if img.Type == galleryType {
				out = append(out, img.URL)
				break
			}
		}
	}
	return out, nil
}
