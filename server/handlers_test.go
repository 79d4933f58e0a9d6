package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grcops/go-session-server/auth"
	"github.com/grcops/go-session-server/auth/backendfakes"
	"github.com/grcops/go-session-server/internal/config"
	"github.com/grcops/go-session-server/response"
	"github.com/grcops/go-session-server/server"
	"github.com/grcops/go-session-server/session"
	"github.com/grcops/go-session-server/token"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "ada@example.com"
	testPassword = "password123"
)

type fixture struct {
	server  *server.Server
	backend *backendfakes.FakeBackend
}

func setupServer(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("AUTH_SECRET", testSecret)
	t.Setenv("ENV", "TEST")

	cfg := config.New()

	codec, err := token.New(cfg.GetAuthSecret())
	require.NoError(t, err)
	store := session.NewStore(codec)

	backend := backendfakes.NewFakeBackend()
	backend.Accounts[testEmail] = testPassword
	backend.LoginResults[testEmail] = &auth.LoginResult{
		AccessToken:          "backend-token-1",
		ExpiresAt:            time.Now().Add(time.Hour),
		User:                 map[string]any{"name": "Ada"},
		MerchantID:           "m-42",
		UserPermissions:      map[string]any{"audit": true},
		KYC:                  map[string]any{"status": "verified"},
		WorkspaceIDs:         []string{"ws-1"},
		WorkspacePermissions: map[string]any{"ws-1": "admin"},
	}

	return &fixture{
		server:  server.New(cfg, store, auth.NewService(backend, store)),
		backend: backend,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, response.APIResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	var envelope response.APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return w, envelope
}

func (f *fixture) login(t *testing.T) []*http.Cookie {
	t.Helper()

	w, envelope := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	return cookies
}

func TestLoginHandler(t *testing.T) {
	t.Run("sets three httpOnly session cookies", func(t *testing.T) {
		f := setupServer(t)
		cookies := f.login(t)

		names := make(map[string]bool)
		for _, cookie := range cookies {
			names[cookie.Name] = true
			require.True(t, cookie.HttpOnly)
			require.Equal(t, "/", cookie.Path)
			require.NotEmpty(t, cookie.Value)
		}
		require.True(t, names["grc_auth_session"])
		require.True(t, names["grc_user_session"])
		require.True(t, names["grc_workspace_session"])
	})

	t.Run("does not leak the backend token in the body", func(t *testing.T) {
		f := setupServer(t)

		w, _ := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"password123"}`, nil)
		require.NotContains(t, w.Body.String(), "backend-token-1")
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		f := setupServer(t)

		w, envelope := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"nope"}`, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.False(t, envelope.Success)
		require.Equal(t, "INVALID_CREDENTIALS", envelope.StatusText)
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		f := setupServer(t)

		w, envelope := f.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com"}`, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "INVALID_REQUEST", envelope.StatusText)
	})
}

func TestRequireSession(t *testing.T) {
	t.Run("blocks anonymous requests", func(t *testing.T) {
		f := setupServer(t)

		w, envelope := f.do(t, http.MethodGet, "/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "UNAUTHENTICATED", envelope.StatusText)
	})

	t.Run("blocks tampered cookies", func(t *testing.T) {
		f := setupServer(t)
		cookies := f.login(t)

		for _, cookie := range cookies {
			if cookie.Name == "grc_auth_session" {
				cookie.Value = cookie.Value + "x"
			}
		}

		w, envelope := f.do(t, http.MethodGet, "/me", "", cookies)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "UNAUTHENTICATED", envelope.StatusText)
	})

	t.Run("passes authenticated requests through", func(t *testing.T) {
		f := setupServer(t)
		cookies := f.login(t)

		w, envelope := f.do(t, http.MethodGet, "/me", "", cookies)
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, envelope.Success)

		data, ok := envelope.Data.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "m-42", data["merchantID"])
	})
}

func TestSessionProbe(t *testing.T) {
	f := setupServer(t)

	t.Run("anonymous", func(t *testing.T) {
		w, envelope := f.do(t, http.MethodGet, "/auth/session", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := envelope.Data.(map[string]any)
		require.Equal(t, false, data["authenticated"])
	})

	t.Run("authenticated", func(t *testing.T) {
		cookies := f.login(t)

		w, envelope := f.do(t, http.MethodGet, "/auth/session", "", cookies)
		require.Equal(t, http.StatusOK, w.Code)

		data := envelope.Data.(map[string]any)
		require.Equal(t, true, data["authenticated"])
	})
}

func TestLogoutHandler(t *testing.T) {
	f := setupServer(t)
	cookies := f.login(t)

	w, envelope := f.do(t, http.MethodPost, "/auth/logout", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	// Every slot cookie is expired on the response.
	expired := 0
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			expired++
		}
	}
	require.Equal(t, 3, expired)

	// Logout without any cookies at all is still a success.
	w, envelope = f.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)
}

func TestWorkspaceHandlers(t *testing.T) {
	f := setupServer(t)
	cookies := f.login(t)

	t.Run("read", func(t *testing.T) {
		w, envelope := f.do(t, http.MethodGet, "/workspace", "", cookies)
		require.Equal(t, http.StatusOK, w.Code)

		data := envelope.Data.(map[string]any)
		require.Equal(t, []any{"ws-1"}, data["workspaceIDs"])
	})

	t.Run("partial update retains permissions", func(t *testing.T) {
		w, envelope := f.do(t, http.MethodPatch, "/workspace", `{"workspaceIDs":["ws-1","ws-2"]}`, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		data := envelope.Data.(map[string]any)
		require.Equal(t, []any{"ws-1", "ws-2"}, data["workspaceIDs"])
		require.Equal(t, map[string]any{"ws-1": "admin"}, data["workspacePermissions"])
	})
}

func TestHealthHandler(t *testing.T) {
	f := setupServer(t)

	w, envelope := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)
}
