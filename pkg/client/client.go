// Package client is a typed Go client for the notification-center API. It
// carries the feed aggregate used by bell-style UIs: wholesale list
// replacement on load, optimistic mark-read with rollback, and a polling
// loop with backoff and jitter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client for the API rooted at baseURL (including the
// /api/v0 base path). The session is injected here and consulted on every
// request.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.session.Token()
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListNotifications fetches the feed for the current user.
func (c *Client) ListNotifications(ctx context.Context, f Filter) ([]Notification, error) {
	query := url.Values{}
	if f.Category != "" {
		query.Set("category", f.Category)
	}
	if f.Status != "" {
		query.Set("status", f.Status)
	}
	if f.UnreadOnly {
		query.Set("unread", "true")
	}

	var resp struct {
		Data []Notification `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// MarkRead marks one notification read and returns the updated record.
func (c *Client) MarkRead(ctx context.Context, id string) (Notification, error) {
	var n Notification
	err := c.do(ctx, http.MethodPatch, "/notifications/"+id+"/read", nil, nil, &n)
	return n, err
}

// MarkAllRead marks every notification read, narrowed to one category when
// non-empty.
func (c *Client) MarkAllRead(ctx context.Context, category string) error {
	body := map[string]string{}
	if category != "" {
		body["category"] = category
	}
	return c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", nil, body, nil)
}

// Stats fetches the bell counters.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, http.MethodGet, "/notifications/stats", nil, nil, &s)
	return s, err
}

// Send creates a custom notification for each recipient; the first created
// record is returned.
func (c *Client) Send(ctx context.Context, req SendRequest) (Notification, error) {
	var n Notification
	err := c.do(ctx, http.MethodPost, "/notifications/send", nil, req, &n)
	return n, err
}

// SendTemplate renders a named template server-side and sends the result.
func (c *Client) SendTemplate(ctx context.Context, templateName string, recipients []int64, data map[string]string) (Notification, error) {
	body := map[string]interface{}{
		"template_name": templateName,
		"recipients":    recipients,
		"data":          data,
	}
	var n Notification
	err := c.do(ctx, http.MethodPost, "/notifications/send-template", nil, body, &n)
	return n, err
}

// Preferences fetches the current user's preference records. Responses that
// match none of the known envelope shapes fail with *MalformedError instead
// of silently coercing to an empty list.
func (c *Client) Preferences(ctx context.Context) ([]Preference, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/notifications/preferences", nil, nil, &raw); err != nil {
		return nil, err
	}
	return parsePreferences(raw)
}

// UpdatePreference upserts the record for (current user, category).
func (c *Client) UpdatePreference(ctx context.Context, req PreferenceUpdate) (Preference, error) {
	var p Preference
	err := c.do(ctx, http.MethodPut, "/notifications/preferences", nil, req, &p)
	return p, err
}

// Categories fetches the category registry as a key-to-label map.
func (c *Client) Categories(ctx context.Context) (map[string]string, error) {
	var m map[string]string
	err := c.do(ctx, http.MethodGet, "/notifications/categories", nil, nil, &m)
	return m, err
}

// Channels fetches the channel registry as a key-to-label map.
func (c *Client) Channels(ctx context.Context) (map[string]string, error) {
	var m map[string]string
	err := c.do(ctx, http.MethodGet, "/notifications/channels", nil, nil, &m)
	return m, err
}
