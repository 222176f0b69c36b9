// Package api is the HTTP client for the Copracess mobile backend. The
// domain Client routes every call through the session transport, so a
// 401 on any endpoint triggers the refresh-and-retry protocol; the
// AuthClient in auth.go stays outside it on purpose.
package api

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

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/copracess/go-mobile-client/transport"
)

// DefaultBaseURL is the production mobile API.
const DefaultBaseURL = "https://www.copracess.live/api/mobile"

const defaultTimeout = 30 * time.Second

// Error is a non-2xx backend response. Message carries the backend's
// user-displayable message when one was returned.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// UserMessage extracts the backend's user-displayable message from an
// error chain, or "" when there is none. Screens show this inline.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client calls the authenticated endpoints of the mobile backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a domain client whose requests are stamped and
// refreshed by the given token source (normally the session manager).
func NewClient(baseURL string, tokens transport.TokenSource, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	c.http.Transport = transport.New(tokens, transport.WithLogger(c.log))
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[api] encode %s %s body", method, path)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.Wrapf(err, "[api] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[api] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[api] decode %s %s response", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
