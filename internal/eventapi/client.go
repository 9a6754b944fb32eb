// Package eventapi is a thin client for the /events REST resource.
package eventapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// Client talks to a single REST resource holding events.
// Every call makes exactly one attempt; there are no retries and no client-side
// timeout. Callers bound a call through its context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the resource at baseURL, e.g.
// "http://localhost:3000/events".
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// BaseURL returns the resource URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAll fetches the full collection in the order the backend returns it.
func (c *Client) GetAll(ctx context.Context) ([]models.Event, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var events []models.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}

	return events, nil
}

// createRequest is the body of a creation request; it never carries an id.
type createRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Add creates newEvent and returns the backend's record, which carries the
// assigned id. The caller must supply name, start and end.
func (c *Client) Add(ctx context.Context, newEvent models.Event) (models.Event, error) {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL, createRequest{
		Name:  newEvent.Name,
		Start: newEvent.Start,
		End:   newEvent.End,
	})
	if err != nil {
		return models.Event{}, err
	}
	defer resp.Body.Close()

	var saved models.Event
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return models.Event{}, fmt.Errorf("decoding created event: %w", err)
	}

	return saved, nil
}

// Edit replaces the record identified by id with updatedEvent.
// The response body is ignored and a non-OK status is not reported: the caller
// already holds the authoritative fields.
func (c *Client) Edit(ctx context.Context, id models.EventID, updatedEvent models.Event) error {
	updatedEvent.ID = id
	resp, err := c.do(ctx, http.MethodPut, c.itemURL(id), updatedEvent)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// DeleteByID requests deletion of the record identified by id.
// Same status policy as Edit.
func (c *Client) DeleteByID(ctx context.Context, id models.EventID) error {
	resp, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *Client) itemURL(id models.EventID) string {
	return c.baseURL + "/" + url.PathEscape(id.String())
}

// do sends one request, JSON-encoding body when it is non-nil.
func (c *Client) do(ctx context.Context, method, target string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	return resp, nil
}

func drain(resp *http.Response) {
	// A failed drain only costs connection reuse.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
