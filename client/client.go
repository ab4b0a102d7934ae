// Package client is a typed client for the medbook API. It keeps one
// session per role, attaches the bearer token of the role a call needs,
// and validates forms before anything goes on the wire.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultBaseURL is where a local server listens.
const DefaultBaseURL = "http://localhost:6868"

type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLocation sets the clinic time zone schedules are read in. It must match
// the server's TIMEZONE; the default is Asia/Ho_Chi_Minh.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock replaces time.Now for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, sessions SessionStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if sessions == nil {
		sessions = NewMemoryStore()
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + "/api/v1",
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		now:      time.Now,
		loc:      DefaultLocation(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the live session of role. Expired sessions are removed
// and reported as ErrNoSession.
func (c *Client) Session(role string) (Session, error) {
	s, err := c.sessions.Load(role)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(c.now()) {
		_ = c.sessions.Delete(role)
		return Session{}, ErrNoSession
	}
	return s, nil
}

// envelope is the shape of every server response.
type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// request describes one API call. Role selects the session whose token is
// attached; an empty role sends no token.
type request struct {
	method string
	path   string
	query  url.Values
	role   string
	body   any
	raw    io.Reader
	ctype  string
}

// do sends req and decodes the envelope's data into out (when non-nil). It
// returns the envelope message on success.
func (c *Client) do(ctx context.Context, req request, out any) (string, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	body := req.raw
	ctype := req.ctype
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return "", fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
		ctype = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Accept", "application/json")
	if ctype != "" {
		httpReq.Header.Set("Content-Type", ctype)
	}
	if req.role != "" {
		if s, err := c.Session(req.role); err == nil {
			httpReq.Header.Set("Authorization", "Bearer "+s.Token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: DefaultErrorMessage}
		if decodeErr == nil {
			if env.Message != "" {
				apiErr.Message = env.Message
			}
			apiErr.Fields = env.Errors
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return env.Message, nil
}

// isNoSession reports whether err means the role is logged out.
func isNoSession(err error) bool {
	return errors.Is(err, ErrNoSession)
}
