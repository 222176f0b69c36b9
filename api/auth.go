package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/copracess/go-mobile-client/session"
)

var _ session.Backend = (*AuthClient)(nil)

// AuthClient performs the two credential-exchange calls. It runs on a
// bare HTTP client with no interceptor: login has no token yet, and
// the refresh call must never carry a stale bearer header.
type AuthClient struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// AuthOption configures an AuthClient.
type AuthOption func(*AuthClient)

// WithAuthTimeout overrides the default 30s timeout.
func WithAuthTimeout(timeout time.Duration) AuthOption {
	return func(c *AuthClient) {
		c.http.Timeout = timeout
	}
}

// WithAuthLogger sets the client's logger.
func WithAuthLogger(log zerolog.Logger) AuthOption {
	return func(c *AuthClient) {
		c.log = log
	}
}

// NewAuthClient creates the credential-exchange client for baseURL.
func NewAuthClient(baseURL string, options ...AuthOption) *AuthClient {
	c := &AuthClient{
		baseURL: baseURL,
		log:     zerolog.Nop(),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Login exchanges an email/password pair for tokens and the backend's
// structured user object. Credentials are passed through as given;
// validation is the backend's call.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*session.LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp session.LoginResponse
	if err := c.post(ctx, "/auth", body, &resp); err != nil {
		return nil, errors.Wrap(err, "[AuthClient.Login]")
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	body := map[string]string{"token": refreshToken}
	var resp session.TokenPair
	if err := c.post(ctx, "/auth/refresh", body, &resp); err != nil {
		return nil, errors.Wrap(err, "[AuthClient.Refresh]")
	}
	return &resp, nil
}

func (c *AuthClient) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "encode %s body", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.Wrapf(err, "build POST %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}
