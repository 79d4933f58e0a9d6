package session

import (
	"net/http"

	"github.com/pkg/errors"
)

// Jar abstracts the request-scoped cookie jar the store reads and writes.
// The HTTP layer adapts a ResponseWriter/Request pair; tests use jarfakes.
type Jar interface {
	// Get returns the named cookie, or an error if it is not present.
	Get(name string) (*http.Cookie, error)

	// Set writes a cookie to the response.
	Set(cookie *http.Cookie) error

	// Delete expires the named cookie on the response.
	Delete(name string) error
}

type httpJar struct {
	w http.ResponseWriter
	r *http.Request
}

// HTTPJar adapts a ResponseWriter/Request pair into a Jar. Reads come from the
// request, writes go to the response; neither is shared across requests.
func HTTPJar(w http.ResponseWriter, r *http.Request) Jar {
	return &httpJar{w: w, r: r}
}

func (j *httpJar) Get(name string) (*http.Cookie, error) {
	if j.r == nil {
		return nil, errors.New("session.HTTPJar no request in scope")
	}
	return j.r.Cookie(name)
}

func (j *httpJar) Set(cookie *http.Cookie) error {
	if j.w == nil {
		return errors.New("session.HTTPJar no response writer in scope")
	}
	http.SetCookie(j.w, cookie)
	return nil
}

func (j *httpJar) Delete(name string) error {
	if j.w == nil {
		return errors.New("session.HTTPJar no response writer in scope")
	}
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return nil
}
