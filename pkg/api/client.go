// Package api is the HTTP client of the backlog server JSON interface.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/backlog/pkg/item"
)

// ErrMalformedSnapshot is wrapped by Fetch when the server answers with a body
// that does not decode into a snapshot.
var ErrMalformedSnapshot = errors.New("api: malformed snapshot")

// Error is a failed request. Message carries the server response text, which
// is what gets shown to the user.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.Status))
	}
	return e.Op + ": request failed"
}

// Client talks to one area of a backlog server.
type Client struct {
	base   string
	area   string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for area on the server at base, e.g.
// http://host/backlogtool.
func New(base, area string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		area:   area,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Area is the name of the area the client reads and writes.
func (c *Client) Area() string {
	return c.area
}

// Base is the server root URL.
func (c *Client) Base() string {
	return c.base
}

func (c *Client) endpoint(op string, query url.Values) string {
	u := c.base + "/json/" + op + "/" + url.PathEscape(c.area)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Fetch reads the parents of view under order together with the area
// metadata. Both reads run concurrently and both must succeed.
func (c *Client) Fetch(ctx context.Context, view item.View, order string) (*item.Snapshot, error) {
	var (
		parents []item.Item
		area    item.Area
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parents, err = c.ReadSnapshot(gctx, view, order)
		return err
	})
	g.Go(func() error {
		var err error
		area, err = c.ReadArea(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap := &item.Snapshot{
		View:      view,
		Order:     order,
		Area:      area,
		Parents:   parents,
		FetchedAt: time.Now(),
	}
	snap.Stamp()
	return snap, nil
}

// ReadSnapshot fetches the parent rows, each with its children, of view.
func (c *Client) ReadSnapshot(ctx context.Context, view item.View, order string) ([]item.Item, error) {
	op := "read" + string(view)
	q := url.Values{}
	q.Set("order", order)
	body, err := c.do(ctx, http.MethodGet, op, q, "", nil)
	if err != nil {
		return nil, err
	}
	var parents []item.Item
	if err := json.Unmarshal(body, &parents); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, op, err)
	}
	if parents == nil {
		return nil, fmt.Errorf("%w: %s: null body", ErrMalformedSnapshot, op)
	}
	for i := range parents {
		if parents[i].ID == 0 {
			return nil, fmt.Errorf("%w: %s: parent %d has no id", ErrMalformedSnapshot, op, i)
		}
		for k := range parents[i].Children {
			parents[i].Children[k].Children = nil
		}
	}
	return parents, nil
}

// ReadArea fetches the area metadata.
func (c *Client) ReadArea(ctx context.Context) (item.Area, error) {
	body, err := c.do(ctx, http.MethodGet, "readArea", nil, "", nil)
	if err != nil {
		return item.Area{}, err
	}
	var area item.Area
	if err := json.Unmarshal(body, &area); err != nil {
		return item.Area{}, fmt.Errorf("%w: readArea: %v", ErrMalformedSnapshot, err)
	}
	return area, nil
}

// Create posts body to create{type}. A nil id means the server refused to
// create the item.
func (c *Client) Create(ctx context.Context, t item.Type, body any) (*int64, error) {
	op := "create" + string(t)
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("api: %s: encode: %w", op, err)
		}
	}
	resp, err := c.do(ctx, http.MethodPost, op, nil, "application/json", payload)
	if err != nil {
		return nil, err
	}
	return parseID(op, resp)
}

// Update saves an edited item. push asks the server to notify the other
// clients of the area.
func (c *Client) Update(ctx context.Context, it item.Item, push bool) error {
	op := "update" + string(it.Type)
	body, err := item.UpdateBody(it)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: %s: encode: %w", op, err)
	}
	q := url.Values{}
	q.Set("pushUpdate", strconv.FormatBool(push))
	_, err = c.do(ctx, http.MethodPost, op, q, "application/json", payload)
	return err
}

// Clone duplicates the item id of type t, optionally with its children.
func (c *Client) Clone(ctx context.Context, t item.Type, id int64, withChildren bool) (*int64, error) {
	op := "clone" + t.Title()
	form := url.Values{}
	form.Set("id", strconv.FormatInt(id, 10))
	form.Set("withChildren", strconv.FormatBool(withChildren))
	resp, err := c.do(ctx, http.MethodPost, op, nil, "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return nil, err
	}
	return parseID(op, resp)
}

// Delete removes the item id of type t. The body is the bare id.
func (c *Client) Delete(ctx context.Context, t item.Type, id int64) error {
	op := "delete" + string(t)
	_, err := c.do(ctx, http.MethodPost, op, nil, "application/json", []byte(strconv.FormatInt(id, 10)))
	return err
}

// Move reorders the moved items of view in front of req.LastItem.
func (c *Client) Move(ctx context.Context, view item.View, req item.MoveRequest) error {
	op := "move" + string(view)
	if req.MovedItems == nil {
		req.MovedItems = []item.Ref{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("api: %s: encode: %w", op, err)
	}
	_, err = c.do(ctx, http.MethodPost, op, nil, "application/json", payload)
	return err
}

// AutocompleteThemes returns theme names matching term.
func (c *Client) AutocompleteThemes(ctx context.Context, term string) ([]string, error) {
	q := url.Values{}
	q.Set("term", term)
	return c.names(ctx, "autocompletethemes", q)
}

// AutocompleteEpics returns epic names of theme matching term.
func (c *Client) AutocompleteEpics(ctx context.Context, theme, term string) ([]string, error) {
	q := url.Values{}
	q.Set("theme", theme)
	q.Set("term", term)
	return c.names(ctx, "autocompleteepics", q)
}

func (c *Client) names(ctx context.Context, op string, q url.Values) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, op, q, "", nil)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("api: %s: decode: %w", op, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, op string, q url.Values, contentType string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(op, q), body)
	if err != nil {
		return nil, &Error{Op: op, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "err", err)
		return nil, &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: err.Error()}
	}
	c.logger.Debug("request", "op", op, "status", resp.StatusCode, "took", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func parseID(op string, body []byte) (*int64, error) {
	s := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if s == "" || s == "null" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("api: %s: unexpected id %q", op, s)
	}
	return &id, nil
}
