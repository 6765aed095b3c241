package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/oekaki"
)

const defaultClientTimeout = 30 * time.Second

// Client is a Store backed by a remote gallery Server.
type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

var _ Remote = (*Client)(nil)

// NewClient returns a client for the gallery served at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := newOptions(opts)
	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		http: hc,
		log:  o.log(),
	}
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Save uploads png under a fresh id.
func (c *Client) Save(ctx context.Context, png []byte) (Drawing, error) {
	return c.SaveAs(ctx, NewID(), png)
}

// SaveAs uploads png under the given id.
func (c *Client) SaveAs(ctx context.Context, id string, png []byte) (Drawing, error) {
	if len(png) == 0 {
		return Drawing{}, ErrEmptyImage
	}
	body, err := json.Marshal(saveRequest{Image: oekaki.EncodeDataURL(png), ID: id})
	if err != nil {
		return Drawing{}, err
	}
	var d Drawing
	if err := c.do(ctx, http.MethodPost, "/save", bytes.NewReader(body), &d); err != nil {
		return Drawing{}, err
	}
	return d, nil
}

// List returns the newest drawings of the shared gallery.
func (c *Client) List(ctx context.Context) ([]Drawing, error) {
	var resp drawingsResponse
	if err := c.do(ctx, http.MethodGet, "/gallery", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drawings, nil
}

// FetchByIDs returns the drawings with the given ids that exist remotely.
func (c *Client) FetchByIDs(ctx context.Context, ids []string) ([]Drawing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var resp drawingsResponse
	if err := c.do(ctx, http.MethodGet, "/drawings?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drawings, nil
}

// Delete removes a drawing from the remote gallery.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/drawings/"+url.PathEscape(id), nil, nil)
}

// Watch subscribes to the live feed and calls fn for every drawing saved
// on the server until ctx is done or the connection fails.
// It returns nil when ctx ends the subscription.
func (c *Client) Watch(ctx context.Context, fn func(Drawing)) error {
	u, err := url.Parse(c.base + "/gallery/live")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("gallery: watch %s: %w", u, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var d Drawing
		if err := conn.ReadJSON(&d); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("gallery: watch: %w", err)
		}
		fn(d)
	}
}

// do sends a JSON request and decodes a JSON response into out.
// Non-2xx responses become *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gallery: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&e)
		c.log.Debug("gallery: remote error", "method", method, "path", path, "status", resp.StatusCode, "error", e.Error)
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gallery: decode %s response: %w", path, err)
	}
	return nil
}
