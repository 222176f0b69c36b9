package fakebackend

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/copracess/go-mobile-client/session"
)

var _ session.Backend = (*FakeBackend)(nil)

// FakeBackend is a scriptable session.Backend for tests. Responses are
// set up front; call counts can be asserted afterwards.
type FakeBackend struct {
	lock sync.Mutex

	LoginResponse *session.LoginResponse
	LoginErr      error
	LoginCalls    int

	RefreshResponse *session.TokenPair
	RefreshErr      error
	RefreshCalls    int
	RefreshTokens   []string // refresh tokens received, in call order
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Login(_ context.Context, email, password string) (*session.LoginResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if f.LoginResponse == nil {
		return nil, errors.New("no login response configured")
	}
	return f.LoginResponse, nil
}

func (f *FakeBackend) Refresh(_ context.Context, refreshToken string) (*session.TokenPair, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.RefreshCalls++
	f.RefreshTokens = append(f.RefreshTokens, refreshToken)
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	if f.RefreshResponse == nil {
		return nil, errors.New("no refresh response configured")
	}
	return f.RefreshResponse, nil
}
