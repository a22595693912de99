// Package backend talks to Tonari's own facility service: the override feed
// read during searches and every write endpoint.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds"
	"github.com/tonari-app/tonari/internal/upstream"
)

const (
	Feed = "backend"

	// CommentTimeLayout is how the backend renders comment timestamps.
	CommentTimeLayout = "2006-01-02 15:04:05.000 UTC"
)

type Client struct {
	up   *upstream.Client
	base string // always ends in "/"
}

func New(baseURL string, hc *http.Client, log *slog.Logger) *Client {
	if baseURL != "" && baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}
	return &Client{up: upstream.New(Feed, hc, log), base: baseURL}
}

func (c *Client) url(path string, params url.Values) string {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func idPath(id model.ID) string {
	return url.PathEscape(id.SourceID) + "/" + url.PathEscape(id.OriginalID)
}

// ByRadius is the override search around pos. A non-2xx answer is an
// unsuccessful, empty collection; only transport failures are errors.
func (c *Client) ByRadius(ctx context.Context, pos model.Position, radius int) (*feeds.FeatureCollection, error) {
	path := fmt.Sprintf("facilities/by-radius/%s/%s/%d",
		model.FormatCoord(pos.Lon), model.FormatCoord(pos.Lat), radius)
	var fc feeds.FeatureCollection
	if err := c.up.GetJSON(ctx, c.url(path, nil), nil, &fc); err != nil {
		if errors.Is(err, upstream.ErrStatus) {
			return &feeds.FeatureCollection{}, nil
		}
		return nil, err
	}
	return &fc, nil
}

// ByID fetches the backend record of one facility.
func (c *Client) ByID(ctx context.Context, id model.ID) (*feeds.FeatureCollection, error) {
	var fc feeds.FeatureCollection
	if err := c.up.GetJSON(ctx, c.url("facilities/by-id/"+idPath(id), nil), nil, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// firstProps returns the properties of the first record of a successful by-id
// answer. Non-OK answers and empty results give ok=false without an error.
func (c *Client) firstProps(ctx context.Context, id model.ID) (map[string]any, bool, error) {
	fc, err := c.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, upstream.ErrStatus) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !fc.Successful() {
		return nil, false, nil
	}
	f, ok := fc.First()
	if !ok {
		return nil, false, nil
	}
	return feeds.Props(f), true, nil
}

// Images returns the user uploaded image urls of a facility.
func (c *Client) Images(ctx context.Context, id model.ID) ([]string, error) {
	props, ok, err := c.firstProps(ctx, id)
	if err != nil || !ok {
		return []string{}, err
	}
	return feeds.URLs(props["images"]), nil
}

// Comments returns the comments of a facility in backend order.
func (c *Client) Comments(ctx context.Context, id model.ID) ([]model.Comment, error) {
	props, ok, err := c.firstProps(ctx, id)
	if err != nil || !ok {
		return []model.Comment{}, err
	}
	list, _ := props["comments"].([]any)
	out := make([]model.Comment, 0, len(list))
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Comment{
			ID:        scalarString(m["id"]),
			Content:   scalarString(m["content"]),
			Timestamp: ParseCommentTime(scalarString(m["timestamp"])),
		})
	}
	return out, nil
}

// ParseCommentTime parses a backend timestamp as UTC; unparsable input gives
// the zero time.
func ParseCommentTime(s string) time.Time {
	t, err := time.ParseInLocation(CommentTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
