// Package session manages three cookie-backed session slots (auth, user,
// workspace) on top of the token codec. The auth slot is the single source of
// authentication truth: reads of the other slots are gated on it.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	autherrors "github.com/grcops/go-session-server/internal/errors"
	"github.com/grcops/go-session-server/internal/utils"
	"github.com/grcops/go-session-server/token"
)

// CookieNames holds the cookie name of each session slot.
type CookieNames struct {
	Auth      string
	User      string
	Workspace string
}

// DefaultCookieNames are used when no override is configured.
var DefaultCookieNames = CookieNames{
	Auth:      "grc_auth_session",
	User:      "grc_user_session",
	Workspace: "grc_workspace_session",
}

// DeleteResult reports the outcome of a best-effort logout. DeleteSession
// never returns a plain error because logout must not fail the request.
type DeleteResult struct {
	Success bool
	Err     error
}

// Store manages the three session slots. A Store holds no per-request state
// and is safe for concurrent use; all request scoping lives in the Jar.
type Store struct {
	codec   *token.Codec
	names   CookieNames
	secure  bool
	ttl     time.Duration
	nowFunc func() time.Time
}

type StoreOption func(*Store)

// WithCookieNames overrides the slot cookie names.
func WithCookieNames(names CookieNames) StoreOption {
	return func(s *Store) {
		s.names = names
	}
}

// WithSecureCookies sets the Secure flag on every slot cookie. Enabled in
// production-like environments only, so local HTTP development still works.
func WithSecureCookies(secure bool) StoreOption {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithCookieTTL overrides the cookie expiry horizon. It should match the
// codec's token TTL; the cookie expiry is defense in depth, the token's exp
// claim is authoritative.
func WithCookieTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithNowFunc overrides the clock, used by tests.
func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a session store over the given codec.
func NewStore(codec *token.Codec, options ...StoreOption) *Store {
	s := &Store{
		codec:   codec,
		names:   DefaultCookieNames,
		ttl:     token.DefaultTTL,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// CreateAuthSession signs an auth-slot payload for the given backend access
// token and sets the auth cookie.
func (s *Store) CreateAuthSession(jar Jar, accessToken string, expiresAt time.Time) error {
	payload := AuthPayload{AccessToken: accessToken, ExpiresAt: expiresAt}
	return s.createSlot(jar, s.names.Auth, payload.claims())
}

// CreateUserSession sets the user slot cookie.
func (s *Store) CreateUserSession(jar Jar, payload UserPayload) error {
	return s.createSlot(jar, s.names.User, payload.claims())
}

// CreateWorkspaceSession sets the workspace slot cookie.
func (s *Store) CreateWorkspaceSession(jar Jar, payload WorkspacePayload) error {
	return s.createSlot(jar, s.names.Workspace, payload.claims())
}

func (s *Store) createSlot(jar Jar, name string, claims token.Payload) error {
	signed, err := s.codec.Encrypt(claims)
	if err != nil {
		return errors.Wrapf(autherrors.ErrSessionCreationFailed, "session.Store %s: %v", name, err)
	}
	if signed == "" {
		// Encrypt returns a token or an error; guard the contract anyway.
		return errors.Wrapf(autherrors.ErrSessionCreationFailed, "session.Store %s: empty token", name)
	}
	if err := jar.Set(s.buildCookie(name, signed)); err != nil {
		return errors.Wrapf(autherrors.ErrSessionCreationFailed, "session.Store %s: %v", name, err)
	}
	return nil
}

// GetServerSession reads and verifies the auth slot, returning the decrypted
// payload or the verification failure. Callers that only need a boolean should
// use VerifySession instead.
func (s *Store) GetServerSession(jar Jar) (*AuthPayload, error) {
	claims, err := s.decryptSlot(jar, s.names.Auth)
	if err != nil {
		return nil, err
	}
	return authFromClaims(claims), nil
}

// VerifySession is the single authentication gate: true iff the auth cookie
// decrypts and carries a non-empty access token. Every decrypt failure is
// swallowed into false; callers needing the reason use GetServerSession.
func (s *Store) VerifySession(jar Jar) bool {
	payload, err := s.GetServerSession(jar)
	if err != nil {
		return false
	}
	return payload.AccessToken != ""
}

// GetUserSession returns the user slot payload, or (nil, nil) when the auth
// slot is invalid. The gate is deliberate: a user cookie that outlives the
// auth cookie is not readable on its own.
func (s *Store) GetUserSession(jar Jar) (*UserPayload, error) {
	if !s.VerifySession(jar) {
		return nil, nil
	}
	claims, err := s.decryptSlot(jar, s.names.User)
	if err != nil {
		return nil, err
	}
	return userFromClaims(claims), nil
}

// GetWorkspaceSession returns the workspace slot payload under the same auth
// gate as GetUserSession.
func (s *Store) GetWorkspaceSession(jar Jar) (*WorkspacePayload, error) {
	if !s.VerifySession(jar) {
		return nil, nil
	}
	claims, err := s.decryptSlot(jar, s.names.Workspace)
	if err != nil {
		return nil, err
	}
	return workspaceFromClaims(claims), nil
}

// UpdateAuthSession merges update over the current auth payload and re-signs
// the cookie with a fresh expiry. It no-ops with (nil, nil) when there is no
// valid session to update; that is the "update only if already logged in" rule,
// not a failure.
func (s *Store) UpdateAuthSession(jar Jar, update AuthUpdate) (*AuthPayload, error) {
	if !s.VerifySession(jar) {
		return nil, nil
	}
	current, err := s.GetServerSession(jar)
	if err != nil {
		return nil, nil
	}

	merged := *current
	if update.AccessToken != nil {
		merged.AccessToken = utils.Value(update.AccessToken)
	}
	if update.ExpiresAt != nil {
		merged.ExpiresAt = utils.Value(update.ExpiresAt)
	}

	if err := s.resignSlot(jar, s.names.Auth, merged.claims()); err != nil {
		return nil, err
	}
	return &merged, nil
}

// UpdateWorkspaceSession merges update over the current workspace payload.
// Nil update fields retain the stored values, so permissions are never
// clobbered by an accidentally absent field. Same (nil, nil) no-op rule as
// UpdateAuthSession.
func (s *Store) UpdateWorkspaceSession(jar Jar, update WorkspaceUpdate) (*WorkspacePayload, error) {
	if !s.VerifySession(jar) {
		return nil, nil
	}
	claims, err := s.decryptSlot(jar, s.names.Workspace)
	if err != nil {
		return nil, nil
	}
	current := workspaceFromClaims(claims)

	merged := *current
	if update.WorkspaceIDs != nil {
		merged.WorkspaceIDs = update.WorkspaceIDs
	}
	if update.WorkspacePermissions != nil {
		merged.WorkspacePermissions = update.WorkspacePermissions
	}

	if err := s.resignSlot(jar, s.names.Workspace, merged.claims()); err != nil {
		return nil, err
	}
	return &merged, nil
}

// DeleteSession deletes all three slot cookies unconditionally. Logout is
// best-effort: failures are reported in the result, never raised, and a panic
// from a jar with no request context is converted into a failed result.
func (s *Store) DeleteSession(jar Jar) (result DeleteResult) {
	defer func() {
		if r := recover(); r != nil {
			result = DeleteResult{Success: false, Err: fmt.Errorf("session.Store.DeleteSession: %v", r)}
		}
	}()

	var firstErr error
	for _, name := range []string{s.names.Auth, s.names.User, s.names.Workspace} {
		if err := jar.Delete(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return DeleteResult{Success: firstErr == nil, Err: firstErr}
}

func (s *Store) decryptSlot(jar Jar, name string) (token.Payload, error) {
	cookie, err := jar.Get(name)
	if err != nil || cookie == nil {
		// Absent cookie and unreadable jar classify the same way: no token.
		return s.codec.Decrypt("")
	}
	return s.codec.Decrypt(cookie.Value)
}

func (s *Store) resignSlot(jar Jar, name string, claims token.Payload) error {
	signed, err := s.codec.Encrypt(claims)
	if err != nil || signed == "" {
		return errors.Wrapf(autherrors.ErrSessionUpdateFailed, "session.Store %s: %v", name, err)
	}
	if err := jar.Set(s.buildCookie(name, signed)); err != nil {
		return errors.Wrapf(autherrors.ErrSessionUpdateFailed, "session.Store %s: %v", name, err)
	}
	return nil
}

func (s *Store) buildCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  s.nowFunc().Add(s.ttl),
	}
}
