package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/copracess/go-mobile-client/transport"
)

// fakeTokenSource hands out current and lets tests script Refresh.
type fakeTokenSource struct {
	mu      sync.Mutex
	current string

	refreshCalls int32
	refreshErr   error
	next         string
	gate         chan struct{} // when non-nil, Refresh blocks until closed
}

func (f *fakeTokenSource) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeTokenSource) Refresh(ctx context.Context) (string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
			// Give the last 401 observer time to enqueue before the
			// refresh settles; it only has to reach a mutex.
			time.Sleep(100 * time.Millisecond)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	atomic.AddInt32(&f.refreshCalls, 1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.mu.Lock()
	f.current = f.next
	f.mu.Unlock()
	return f.next, nil
}

func newClient(ts *fakeTokenSource) *http.Client {
	return &http.Client{Transport: transport.New(ts)}
}

func TestRoundTrip(t *testing.T) {
	t.Run("stamps bearer and request ID", func(t *testing.T) {
		var gotAuth, gotReqID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotReqID = r.Header.Get("X-Request-ID")
		}))
		defer srv.Close()

		client := newClient(&fakeTokenSource{current: "tok-1"})
		resp, err := client.Get(srv.URL + "/queue")
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, "Bearer tok-1", gotAuth)
		require.NotEmpty(t, gotReqID)
	})

	t.Run("anonymous requests carry no bearer header", func(t *testing.T) {
		var sawAuth bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawAuth = r.Header.Get("Authorization") != ""
		}))
		defer srv.Close()

		client := newClient(&fakeTokenSource{})
		resp, err := client.Get(srv.URL + "/prices")
		require.NoError(t, err)
		resp.Body.Close()
		require.False(t, sawAuth)
	})

	t.Run("refresh endpoint bypasses the interceptor", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		client := newClient(&fakeTokenSource{current: "stale"})
		resp, err := client.Post(srv.URL+"/auth/refresh", "application/json", strings.NewReader(`{"token":"r1"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Empty(t, gotAuth, "refresh call must not carry a bearer header")
	})
}

func TestRefreshAndRetry(t *testing.T) {
	t.Run("401 refreshes once and replays the original request", func(t *testing.T) {
		ts := &fakeTokenSource{current: "stale", next: "fresh"}
		var bodies []string
		var mu sync.Mutex
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(body))
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := newClient(ts)
		resp, err := client.Post(srv.URL+"/booking", "application/json", strings.NewReader(`{"copraWeight":1200}`))
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, int32(1), atomic.LoadInt32(&ts.refreshCalls))
		require.Equal(t, []string{`{"copraWeight":1200}`, `{"copraWeight":1200}`}, bodies,
			"body must be replayed intact on the retry")
	})

	t.Run("each request retries at most once", func(t *testing.T) {
		ts := &fakeTokenSource{current: "stale", next: "still-rejected"}
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := newClient(ts)
		resp, err := client.Get(srv.URL + "/queue")
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, int32(2), atomic.LoadInt32(&hits), "original call plus exactly one replay")
		require.Equal(t, int32(1), atomic.LoadInt32(&ts.refreshCalls))
	})

	t.Run("refresh failure propagates to the caller", func(t *testing.T) {
		ts := &fakeTokenSource{current: "stale", refreshErr: errors.New("refresh token revoked")}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := newClient(ts)
		_, err := client.Get(srv.URL + "/queue") //nolint:bodyclose // the round trip fails
		require.Error(t, err)
		require.Contains(t, err.Error(), "refresh token revoked")
	})
}

func TestSingleFlightRefresh(t *testing.T) {
	const concurrent = 8

	t.Run("N concurrent 401s produce exactly one refresh", func(t *testing.T) {
		gate := make(chan struct{})
		ts := &fakeTokenSource{current: "stale", next: "fresh", gate: gate}

		var unauthorized int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				if atomic.AddInt32(&unauthorized, 1) == concurrent {
					close(gate) // every request has now observed its 401
				}
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := newClient(ts)
		var wg sync.WaitGroup
		statuses := make([]int, concurrent)
		errs := make([]error, concurrent)
		for n := 0; n < concurrent; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				resp, err := client.Get(srv.URL + "/queue")
				if err != nil {
					errs[n] = err
					return
				}
				resp.Body.Close()
				statuses[n] = resp.StatusCode
			}(n)
		}
		wg.Wait()

		require.Equal(t, int32(1), atomic.LoadInt32(&ts.refreshCalls))
		for n := 0; n < concurrent; n++ {
			require.NoError(t, errs[n])
			require.Equal(t, http.StatusOK, statuses[n], "request %d", n)
		}
	})

	t.Run("failed refresh rejects every queued request with the same error", func(t *testing.T) {
		gate := make(chan struct{})
		ts := &fakeTokenSource{current: "stale", refreshErr: errors.New("revoked"), gate: gate}

		var unauthorized int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&unauthorized, 1) == concurrent {
				close(gate)
			}
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := newClient(ts)
		var wg sync.WaitGroup
		errs := make([]error, concurrent)
		for n := 0; n < concurrent; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, errs[n] = client.Get(srv.URL + "/queue") //nolint:bodyclose // the round trip fails
			}(n)
		}
		wg.Wait()

		require.Equal(t, int32(1), atomic.LoadInt32(&ts.refreshCalls))
		for n := 0; n < concurrent; n++ {
			require.Error(t, errs[n], "request %d", n)
			require.Contains(t, errs[n].Error(), "revoked")
		}
	})

	t.Run("flag clears after a failed refresh so the next 401 retries", func(t *testing.T) {
		ts := &fakeTokenSource{current: "stale", refreshErr: errors.New("revoked")}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := newClient(ts)
		_, err := client.Get(srv.URL + "/queue") //nolint:bodyclose
		require.Error(t, err)
		_, err = client.Get(srv.URL + "/queue") //nolint:bodyclose
		require.Error(t, err)
		require.Equal(t, int32(2), atomic.LoadInt32(&ts.refreshCalls),
			"a settled refresh must not block later attempts")
	})
}
