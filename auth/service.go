// Package auth implements the login, refresh, and logout actions that sit
// between the HTTP layer and the session store.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	autherrors "github.com/grcops/go-session-server/internal/errors"
	"github.com/grcops/go-session-server/session"
)

// Service brokers credentials to the external backend and materializes the
// result as signed session cookies.
type Service struct {
	backend  Backend
	sessions *session.Store
}

// NewService creates the auth service over a backend and a session store.
func NewService(backend Backend, sessions *session.Store) *Service {
	return &Service{backend: backend, sessions: sessions}
}

// Login exchanges credentials with the backend and, on success, creates the
// auth and user session slots, plus the workspace slot when the backend
// returned workspace data.
func (s *Service) Login(ctx context.Context, jar session.Jar, creds Credentials) (*LoginResult, error) {
	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Login backend")
	}

	if err := s.sessions.CreateAuthSession(jar, result.AccessToken, result.ExpiresAt); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Login auth session")
	}

	if err := s.sessions.CreateUserSession(jar, session.UserPayload{
		User:            result.User,
		MerchantID:      result.MerchantID,
		UserPermissions: result.UserPermissions,
		KYC:             result.KYC,
	}); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Login user session")
	}

	if result.WorkspaceIDs != nil || result.WorkspacePermissions != nil {
		if err := s.sessions.CreateWorkspaceSession(jar, session.WorkspacePayload{
			WorkspaceIDs:         result.WorkspaceIDs,
			WorkspacePermissions: result.WorkspacePermissions,
		}); err != nil {
			return nil, errors.Wrap(err, "auth.Service.Login workspace session")
		}
	}

	log.Info().Str("merchantID", result.MerchantID).Msg("login session created")
	return result, nil
}

// Refresh exchanges the current access token for a fresh one and re-signs the
// auth slot. The caller must already hold a valid session.
func (s *Service) Refresh(ctx context.Context, jar session.Jar) (*session.AuthPayload, error) {
	current, err := s.sessions.GetServerSession(jar)
	if err != nil {
		return nil, err
	}

	refreshed, err := s.backend.Refresh(ctx, current.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Refresh backend")
	}

	updated, err := s.sessions.UpdateAuthSession(jar, session.AuthUpdate{
		AccessToken: &refreshed.AccessToken,
		ExpiresAt:   &refreshed.ExpiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Refresh update")
	}
	if updated == nil {
		// Session evaporated between the read and the update.
		return nil, autherrors.ErrUnauthenticated
	}
	return updated, nil
}

// Logout clears all session slots. Always best-effort; the result reports
// but never raises failure.
func (s *Service) Logout(jar session.Jar) session.DeleteResult {
	result := s.sessions.DeleteSession(jar)
	if !result.Success {
		log.Warn().Err(result.Err).Msg("logout could not clear all session cookies")
	}
	return result
}
