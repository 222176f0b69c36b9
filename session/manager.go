// Package session owns the client's authentication state: acquiring
// credentials, persisting them across restarts, and refreshing the
// access token when the backend reports it expired. Exactly one
// Manager exists per running application.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/copracess/go-mobile-client/credstore"
	apperrors "github.com/copracess/go-mobile-client/internal/errors"
	"github.com/copracess/go-mobile-client/internal/utils"
	"github.com/copracess/go-mobile-client/token"
)

// Backend performs the two credential-exchange calls. Implementations
// must send the refresh call without any bearer header; a stale access
// token on that one request would defeat its purpose.
type Backend interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenPair is the credential pair minted by the backend.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is the login endpoint's payload: a token pair plus an
// optional structured user object.
type LoginResponse struct {
	TokenPair
	User *BackendUser `json:"user"`
}

// Manager holds the current session in memory and coordinates the
// login/logout/refresh lifecycle. All methods are safe for concurrent
// use; the session is mutated only under the manager's lock and read
// through snapshots.
type Manager struct {
	backend  Backend
	store    credstore.Store
	log      zerolog.Logger
	skew     time.Duration
	onLogout func()

	mu      sync.RWMutex
	state   State
	session Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithSkew sets the expiry safety buffer used when inspecting the
// persisted access token at startup.
func WithSkew(skew time.Duration) Option {
	return func(m *Manager) {
		m.skew = skew
	}
}

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithLogoutHandler registers a callback fired after every logout,
// definitive refresh failure included. Navigation collaborators use it
// to return the user to the sign-in screen.
func WithLogoutHandler(fn func()) Option {
	return func(m *Manager) {
		m.onLogout = fn
	}
}

// NewManager creates a session manager. The session starts
// uninitialized; call Initialize to consult the persisted store.
func NewManager(backend Backend, store credstore.Store, options ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[NewManager] backend is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}

	m := &Manager{
		backend: backend,
		store:   store,
		log:     zerolog.Nop(),
		skew:    token.DefaultSkew,
		state:   StateUninitialized,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// AccessToken returns the current access token without checking its
// expiry. Expiry is enforced reactively through the 401 path so the
// hot path stays free of decode work; callers wanting a proactive
// check can use token.IsExpired themselves.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken
}

// Initialize consults the persisted store exactly once at startup. A
// valid stored token pair restores the session directly; an expired
// access token alongside a refresh token triggers a silent refresh;
// anything else leaves the session anonymous. Initialize never fails
// loudly: storage errors are logged and degrade to anonymous.
func (m *Manager) Initialize(ctx context.Context) {
	accessToken, aErr := m.store.Get(credstore.AccessTokenKey)
	refreshToken, rErr := m.store.Get(credstore.RefreshTokenKey)
	storedProfile, pErr := m.store.Get(credstore.UserDataKey)
	if aErr != nil || rErr != nil || pErr != nil {
		m.log.Warn().AnErr("access", aErr).AnErr("refresh", rErr).AnErr("profile", pErr).
			Msg("credential store read failed, starting anonymous")
		m.setAnonymous()
		return
	}

	if accessToken == "" || refreshToken == "" {
		m.setAnonymous()
		return
	}

	var profile UserProfile
	if storedProfile != "" {
		if err := json.Unmarshal([]byte(storedProfile), &profile); err != nil {
			m.log.Warn().Err(err).Msg("stored profile is unreadable, continuing without it")
			profile = UserProfile{}
		}
	}

	if token.IsExpired(accessToken, m.skew) {
		m.log.Info().Msg("stored access token expired, attempting refresh")
		m.mu.Lock()
		m.state = StateRefreshing
		m.session = Session{
			RefreshToken:  refreshToken,
			Authenticated: utils.Ptr(true),
			Profile:       profile,
		}
		m.mu.Unlock()
		if _, err := m.Refresh(ctx); err != nil {
			m.log.Warn().Err(err).Msg("startup refresh failed")
		}
		return
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.session = Session{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		Authenticated: utils.Ptr(true),
		Profile:       profile,
	}
	m.mu.Unlock()
	m.log.Info().Msg("session restored from credential store")
}

// Login exchanges credentials for a token pair. On success the session
// becomes authenticated and all three store entries are persisted; on
// failure the existing session state is left untouched and the error
// carries the backend's user-displayable message. Email and password
// are passed through as given; validating them is the form's job.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return errors.Wrap(err, "[Manager.Login] backend login")
	}

	claims := token.Decode(resp.AccessToken)
	profile := MergeProfile(resp.User, claims)

	m.mu.Lock()
	m.state = StateAuthenticated
	m.session = Session{
		AccessToken:   resp.AccessToken,
		RefreshToken:  resp.RefreshToken,
		Authenticated: utils.Ptr(true),
		Profile:       profile,
	}
	m.mu.Unlock()

	m.persistTokens(resp.AccessToken, resp.RefreshToken)
	m.persistProfile(profile)
	m.log.Info().Str("role", profile.Role).Msg("logged in")
	return nil
}

// Logout deletes the persisted credentials, clears the in-memory
// session, and fires the logout handler. Idempotent: calling it while
// already anonymous only repeats the (idempotent) store deletes.
func (m *Manager) Logout() {
	for _, key := range []string{credstore.AccessTokenKey, credstore.RefreshTokenKey, credstore.UserDataKey} {
		if err := m.store.Delete(key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("credential delete failed")
		}
	}
	m.setAnonymous()
	m.log.Info().Msg("logged out")
	if m.onLogout != nil {
		m.onLogout()
	}
}

// Refresh exchanges the persisted refresh token for a new token pair.
// Any failure is definitive for the session: the manager logs out and
// the caller must not retry. On success the new access token is
// returned, both tokens are persisted, and claims from the new token
// update the cached profile (claims override only the fields they
// carry).
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.state = StateRefreshing
	}
	m.mu.Unlock()

	refreshToken, err := m.store.Get(credstore.RefreshTokenKey)
	if err != nil {
		m.Logout()
		return "", errors.Wrap(err, "[Manager.Refresh] read refresh token")
	}
	if refreshToken == "" {
		m.Logout()
		return "", errors.Wrap(apperrors.ErrNoRefreshToken, "[Manager.Refresh]")
	}

	pair, err := m.backend.Refresh(ctx, refreshToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("token refresh failed, logging out")
		m.Logout()
		return "", errors.Wrap(err, "[Manager.Refresh] backend refresh")
	}

	claims := token.Decode(pair.AccessToken)

	m.mu.Lock()
	m.state = StateAuthenticated
	m.session.AccessToken = pair.AccessToken
	m.session.RefreshToken = pair.RefreshToken
	m.session.Authenticated = utils.Ptr(true)
	m.session.Profile = m.session.Profile.WithClaims(claims)
	m.mu.Unlock()

	m.persistTokens(pair.AccessToken, pair.RefreshToken)
	m.log.Info().Msg("access token refreshed")
	return pair.AccessToken, nil
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAnonymous
	m.session = Session{Authenticated: utils.Ptr(false)}
}

// Store writes are best-effort: a failed persist leaves the in-memory
// session valid, it just will not survive a restart.
func (m *Manager) persistTokens(accessToken, refreshToken string) {
	if err := m.store.Set(credstore.AccessTokenKey, accessToken); err != nil {
		m.log.Warn().Err(err).Msg("persist access token failed")
	}
	if err := m.store.Set(credstore.RefreshTokenKey, refreshToken); err != nil {
		m.log.Warn().Err(err).Msg("persist refresh token failed")
	}
}

func (m *Manager) persistProfile(profile UserProfile) {
	b, err := json.Marshal(profile)
	if err != nil {
		m.log.Warn().Err(err).Msg("encode profile failed")
		return
	}
	if err := m.store.Set(credstore.UserDataKey, string(b)); err != nil {
		m.log.Warn().Err(err).Msg("persist profile failed")
	}
}
