package jarfakes

import (
	"net/http"
	"sync"

	"github.com/grcops/go-session-server/session"
)

var _ session.Jar = (*FakeJar)(nil)

// FakeJar is an in-memory cookie jar for tests. SetErr and DeleteErr force
// the corresponding operation to fail.
type FakeJar struct {
	cookies   map[string]*http.Cookie
	SetErr    error
	DeleteErr error
	lock      sync.RWMutex
}

func NewFakeJar() *FakeJar {
	return &FakeJar{
		cookies: make(map[string]*http.Cookie),
	}
}

func (j *FakeJar) Get(name string) (*http.Cookie, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	cookie, ok := j.cookies[name]
	if !ok {
		return nil, http.ErrNoCookie
	}
	return cookie, nil
}

func (j *FakeJar) Set(cookie *http.Cookie) error {
	if j.SetErr != nil {
		return j.SetErr
	}

	j.lock.Lock()
	defer j.lock.Unlock()

	j.cookies[cookie.Name] = cookie
	return nil
}

func (j *FakeJar) Delete(name string) error {
	if j.DeleteErr != nil {
		return j.DeleteErr
	}

	j.lock.Lock()
	defer j.lock.Unlock()

	delete(j.cookies, name)
	return nil
}

// Cookie returns the stored cookie for inspection in tests, or nil.
func (j *FakeJar) Cookie(name string) *http.Cookie {
	j.lock.RLock()
	defer j.lock.RUnlock()
	return j.cookies[name]
}
