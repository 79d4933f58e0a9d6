package backendfakes

import (
	"context"
	"sync"

	"github.com/grcops/go-session-server/auth"
	autherrors "github.com/grcops/go-session-server/internal/errors"
)

var _ auth.Backend = (*FakeBackend)(nil)

// FakeBackend is an in-memory credential backend for tests. Accounts maps
// email to password; LoginResults maps email to the response to return.
type FakeBackend struct {
	Accounts     map[string]string
	LoginResults map[string]*auth.LoginResult
	RefreshAs    *auth.RefreshResult
	RefreshErr   error

	loginCalls   int
	refreshCalls int
	lock         sync.Mutex
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Accounts:     make(map[string]string),
		LoginResults: make(map[string]*auth.LoginResult),
	}
}

func (b *FakeBackend) Login(_ context.Context, creds auth.Credentials) (*auth.LoginResult, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.loginCalls++

	password, ok := b.Accounts[creds.Email]
	if !ok || password != creds.Password {
		return nil, autherrors.ErrInvalidCredentials
	}
	result, ok := b.LoginResults[creds.Email]
	if !ok {
		return nil, autherrors.ErrBackendUnavailable
	}
	return result, nil
}

func (b *FakeBackend) Refresh(_ context.Context, _ string) (*auth.RefreshResult, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.refreshCalls++

	if b.RefreshErr != nil {
		return nil, b.RefreshErr
	}
	if b.RefreshAs == nil {
		return nil, autherrors.ErrUnauthenticated
	}
	return b.RefreshAs, nil
}

func (b *FakeBackend) LoginCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.loginCalls
}

func (b *FakeBackend) RefreshCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.refreshCalls
}
