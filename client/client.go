// Package client is a typed HTTP client for the bulletin board API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/context/ctxhttp"

	"github.com/jd-116/bulletin-board-api/types"
)

// DefaultTimeout bounds every request made by a client created with New
const DefaultTimeout = 10 * time.Second

// APIError is returned for any response that is not a success envelope
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Client sends requests to a bulletin board API rooted at a base URL
// (including the API prefix, such as "https://board.example/v1")
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new client that sends the given bearer token with every request.
// An empty token sends no Authorization header
func New(baseURL string, token string) *Client {
	return NewWithHTTPClient(baseURL, token, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient creates a new client on top of an existing HTTP client
func NewWithHTTPClient(baseURL string, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends a request and decodes the envelope's data into out, if given
func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := ctxhttp.Do(ctx, c.httpClient, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	var decoded envelope
	err = json.NewDecoder(resp.Body).Decode(&decoded)
	if err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}

	if !decoded.Success || resp.StatusCode >= 300 {
		message := decoded.Error
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out != nil && len(decoded.Data) > 0 {
		err = json.Unmarshal(decoded.Data, out)
		if err != nil {
			return errors.Wrapf(err, "decoding %s %s data", method, path)
		}
	}

	return nil
}

// Resource is a typed view over one resource collection of the API.
// T is the stored record, C the create body and E the edit body
type Resource[T any, C any, E any] struct {
	client  *Client
	path    string
	counter string
}

// ErrNoCounter is returned when incrementing a resource without a counter
var ErrNoCounter = errors.New("resource has no counter")

// NewResource creates a view over the collection at path.
// counter names the increment action (such as "like"), or is empty if there is none
func NewResource[T any, C any, E any](client *Client, path string, counter string) *Resource[T, C, E] {
	return &Resource[T, C, E]{
		client:  client,
		path:    "/" + strings.Trim(path, "/"),
		counter: counter,
	}
}

// Announcements is the announcement collection
func (c *Client) Announcements() *Resource[types.Announcement, types.AnnouncementCreate, types.AnnouncementUpdate] {
	return NewResource[types.Announcement, types.AnnouncementCreate, types.AnnouncementUpdate](c, "announcements", "")
}

// Events is the event collection, whose counter is RSVP
func (c *Client) Events() *Resource[types.Event, types.EventCreate, types.EventUpdate] {
	return NewResource[types.Event, types.EventCreate, types.EventUpdate](c, "events", "rsvp")
}

// Moments is the moment collection, whose counter is like
func (c *Client) Moments() *Resource[types.Moment, types.MomentCreate, types.MomentUpdate] {
	return NewResource[types.Moment, types.MomentCreate, types.MomentUpdate](c, "moments", "like")
}

func (r *Resource[T, C, E]) recordPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List gets every record, in the order the server returned them
func (r *Resource[T, C, E]) List(ctx context.Context) ([]T, error) {
	list := []T{}
	err := r.client.do(ctx, http.MethodGet, r.path, nil, &list)
	if err != nil {
		return nil, err
	}

	return list, nil
}

// Create creates a new record
func (r *Resource[T, C, E]) Create(ctx context.Context, body C) (T, error) {
	var record T
	err := r.client.do(ctx, http.MethodPost, r.path, body, &record)
	return record, err
}

// Update replaces the editable fields of a record
func (r *Resource[T, C, E]) Update(ctx context.Context, id int64, body E) (T, error) {
	var record T
	err := r.client.do(ctx, http.MethodPut, r.recordPath(id), body, &record)
	return record, err
}

// Delete deletes a record
func (r *Resource[T, C, E]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, r.recordPath(id), nil, nil)
}

// Increment bumps the record's counter by one and returns the stored record
func (r *Resource[T, C, E]) Increment(ctx context.Context, id int64) (T, error) {
	var record T
	if r.counter == "" {
		return record, ErrNoCounter
	}

	err := r.client.do(ctx, http.MethodPost, r.recordPath(id)+"/"+r.counter, nil, &record)
	return record, err
}
