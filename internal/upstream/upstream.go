// Package upstream wraps outbound JSON calls to the feeds Tonari aggregates.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/logger"
)

var ErrStatus = errors.New("upstream status")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Feed string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Feed, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

const maxErrorBody = 8 << 10

type Client struct {
	feed     string
	http     *http.Client
	logger   *slog.Logger
	startNow func() time.Time // for tests
}

func New(feed string, hc *http.Client, log *slog.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{feed: feed, http: hc, logger: log, startNow: time.Now}
}

func (c *Client) Feed() string { return c.feed }

// Do executes req and returns the body of a 2xx response.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	ctx := logger.WithFeed(req.Context(), c.feed)
	start := c.startNow()

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		observability.ObserveUpstream(c.feed, err, time.Since(start).Seconds())
		c.logger.DebugContext(ctx, "upstream transport error", "method", req.Method, "err", err)
		return nil, fmt.Errorf("%s: do request: %w", c.feed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{Feed: c.feed, Code: resp.StatusCode, Body: string(b)}
		observability.ObserveUpstream(c.feed, se, time.Since(start).Seconds())
		return nil, se
	}

	b, err := io.ReadAll(resp.Body)
	observability.ObserveUpstream(c.feed, err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.feed, err)
	}
	c.logger.DebugContext(ctx, "upstream done",
		"method", req.Method,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())
	return b, nil
}

// GetJSON fetches u and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, u string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.feed, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	b, err := c.Do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: decode: %w", c.feed, err)
	}
	return nil
}

// PostJSON encodes body and posts it to u. The response body is ignored.
func (c *Client) PostJSON(ctx context.Context, u string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", c.feed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.feed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.Do(req)
	return err
}

// PostMultipart uploads one file part named field.
func (c *Client) PostMultipart(ctx context.Context, u, field, filename, contentType string, data []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%s: multipart part: %w", c.feed, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("%s: multipart write: %w", c.feed, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: multipart close: %w", c.feed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.feed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.Do(req)
	return err
}
