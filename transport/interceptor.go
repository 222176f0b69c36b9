// Package transport carries every outbound API request. The
// Interceptor stamps the bearer header from the in-memory session and,
// on a 401, runs the refresh-and-retry protocol: at most one refresh
// call is ever in flight, no matter how many requests observe the 401
// concurrently, and waiters are released in arrival order.
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// refreshPath is never stamped with a bearer header and never triggers
// the refresh protocol; a stale access token on the refresh call would
// defeat its purpose.
const refreshPath = "/auth/refresh"

// TokenSource supplies bearer tokens to the interceptor. Refresh must
// be definitive: an error means the session is gone and the caller
// must not retry. session.Manager satisfies this interface.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) (string, error)
}

// Interceptor is an http.RoundTripper. Tokens are refreshed reactively
// on the first 401 rather than proactively before every call: the 401
// path has to exist anyway for backend-enforced expiry, and it catches
// clock-skew cases a local check would miss. The first request after
// true expiry pays one extra round trip.
type Interceptor struct {
	base   http.RoundTripper
	tokens TokenSource
	log    zerolog.Logger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

type refreshResult struct {
	token string
	err   error
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithBase sets the underlying RoundTripper (http.DefaultTransport
// otherwise).
func WithBase(base http.RoundTripper) Option {
	return func(i *Interceptor) {
		i.base = base
	}
}

// WithLogger sets the interceptor's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(i *Interceptor) {
		i.log = log
	}
}

// New creates an Interceptor drawing tokens from tokens.
func New(tokens TokenSource, options ...Option) *Interceptor {
	i := &Interceptor{
		base:   http.DefaultTransport,
		tokens: tokens,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// RoundTrip stamps the request and retries it at most once after a
// successful refresh. The incoming request is never mutated; replays
// work off clones.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, refreshPath) {
		return i.base.RoundTrip(req)
	}

	req, err := prepareRequest(req)
	if err != nil {
		return nil, err
	}

	first := clone(req)
	if token := i.tokens.AccessToken(); token != "" {
		first.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := i.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// The backend rejected the token. Settle the single-flight refresh
	// and replay exactly once with whatever it produced.
	drain(resp)
	i.log.Debug().Str("url", req.URL.Path).Msg("401 received, entering refresh protocol")

	newToken, err := i.awaitRefresh(req.Context())
	if err != nil {
		return nil, errors.Wrap(err, "[Interceptor.RoundTrip] token refresh")
	}

	retry := clone(req)
	retry.Header.Set("Authorization", "Bearer "+newToken)
	return i.base.RoundTrip(retry)
}

// awaitRefresh serializes refreshes. The first caller to observe a 401
// performs the refresh; everyone arriving while it is in flight queues
// a channel and waits. Waiters are released in FIFO arrival order and
// all receive the one refresh's outcome. Flag and queue are cleared
// regardless of how the refresh settles.
func (i *Interceptor) awaitRefresh(ctx context.Context) (string, error) {
	i.mu.Lock()
	if i.refreshing {
		ch := make(chan refreshResult, 1)
		i.waiters = append(i.waiters, ch)
		i.mu.Unlock()
		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	i.refreshing = true
	i.mu.Unlock()

	token, err := i.tokens.Refresh(ctx)
	if err != nil {
		i.log.Warn().Err(err).Msg("refresh failed, releasing queued requests with the error")
	}

	i.mu.Lock()
	waiters := i.waiters
	i.waiters = nil
	i.refreshing = false
	i.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}
	return token, err
}

// prepareRequest makes req replayable (the body may need to be sent
// twice) and stamps a request ID for log correlation.
func prepareRequest(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.New().String())
	}
	if out.Body == nil || out.GetBody != nil {
		return out, nil
	}
	body, err := io.ReadAll(out.Body)
	out.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "[Interceptor] buffer request body")
	}
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	out.ContentLength = int64(len(body))
	return out, nil
}

func clone(req *http.Request) *http.Request {
	c := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err == nil {
			c.Body = body
		}
	}
	return c
}

// drain discards a response body so the underlying connection can be
// reused for the replay.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
