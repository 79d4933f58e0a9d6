package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/grcops/go-session-server/auth"
	"github.com/grcops/go-session-server/response"
	"github.com/grcops/go-session-server/session"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Write(w, response.Success("ok", nil))
	}
}

// LoginHandler exchanges credentials for the three session cookies. The
// backend access token never leaves the server except inside the signed,
// httpOnly auth cookie.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			response.Write(w, response.Error("invalid request body", http.StatusBadRequest, "INVALID_REQUEST"))
			return
		}
		if creds.Email == "" || creds.Password == "" {
			response.Write(w, response.Error("email and password are required", http.StatusBadRequest, "INVALID_REQUEST"))
			return
		}

		result, err := s.auth.Login(r.Context(), session.HTTPJar(w, r), creds)
		if err != nil {
			response.Write(w, response.HandleError(err))
			return
		}

		response.Write(w, response.Success("login successful", map[string]any{
			"user":        result.User,
			"merchantID":  result.MerchantID,
			"permissions": result.UserPermissions,
			"expiresAt":   result.ExpiresAt.UTC().Format(time.RFC3339),
		}))
	}
}

// LogoutHandler clears every session slot. Best-effort: a jar failure is
// reported but the cookies that could be cleared stay cleared.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := s.auth.Logout(session.HTTPJar(w, r))
		if !result.Success {
			response.Write(w, response.Error("could not clear session", http.StatusInternalServerError, "SESSION_DELETE_FAILED"))
			return
		}
		response.Write(w, response.Success("logged out", nil))
	}
}

// RefreshHandler exchanges the current backend token for a fresh one and
// re-signs the auth cookie with a new expiry.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := s.auth.Refresh(r.Context(), session.HTTPJar(w, r))
		if err != nil {
			response.Write(w, response.HandleError(err))
			return
		}
		response.Write(w, response.Success("session refreshed", map[string]any{
			"expiresAt": payload.ExpiresAt.UTC().Format(time.RFC3339),
		}))
	}
}

// SessionHandler is an unauthenticated probe the dashboard polls to decide
// between the login screen and the app shell. It never returns 401.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jar := session.HTTPJar(w, r)
		payload, err := s.sessions.GetServerSession(jar)
		if err != nil || payload.AccessToken == "" {
			response.Write(w, response.Success("session status", map[string]any{"authenticated": false}))
			return
		}
		response.Write(w, response.Success("session status", map[string]any{
			"authenticated": true,
			"expiresAt":     payload.ExpiresAt.UTC().Format(time.RFC3339),
		}))
	}
}

// MeHandler returns the user slot. The read is gated on the auth slot, so a
// stale user cookie without a valid auth cookie yields 401.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := s.sessions.GetUserSession(session.HTTPJar(w, r))
		if err != nil {
			response.Write(w, response.HandleError(err))
			return
		}
		if payload == nil {
			response.Write(w, response.Error("not authenticated", http.StatusUnauthorized, "UNAUTHENTICATED"))
			return
		}
		response.Write(w, response.Success("user session", map[string]any{
			"user":            payload.User,
			"merchantID":      payload.MerchantID,
			"userPermissions": payload.UserPermissions,
			"kyc":             payload.KYC,
		}))
	}
}

// WorkspaceHandler returns the workspace slot under the same auth gate.
func (s *Server) WorkspaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := s.sessions.GetWorkspaceSession(session.HTTPJar(w, r))
		if err != nil {
			response.Write(w, response.HandleError(err))
			return
		}
		if payload == nil {
			response.Write(w, response.Error("not authenticated", http.StatusUnauthorized, "UNAUTHENTICATED"))
			return
		}
		response.Write(w, response.Success("workspace session", map[string]any{
			"workspaceIDs":         payload.WorkspaceIDs,
			"workspacePermissions": payload.WorkspacePermissions,
		}))
	}
}

// WorkspaceUpdateHandler applies a partial update to the workspace slot.
// Omitted fields keep their stored values.
func (s *Server) WorkspaceUpdateHandler() http.HandlerFunc {
	type updateRequest struct {
		WorkspaceIDs         []string       `json:"workspaceIDs"`
		WorkspacePermissions map[string]any `json:"workspacePermissions"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Write(w, response.Error("invalid request body", http.StatusBadRequest, "INVALID_REQUEST"))
			return
		}

		updated, err := s.sessions.UpdateWorkspaceSession(session.HTTPJar(w, r), session.WorkspaceUpdate{
			WorkspaceIDs:         req.WorkspaceIDs,
			WorkspacePermissions: req.WorkspacePermissions,
		})
		if err != nil {
			response.Write(w, response.HandleError(err))
			return
		}
		if updated == nil {
			response.Write(w, response.Error("not authenticated", http.StatusUnauthorized, "UNAUTHENTICATED"))
			return
		}
		response.Write(w, response.Success("workspace updated", map[string]any{
			"workspaceIDs":         updated.WorkspaceIDs,
			"workspacePermissions": updated.WorkspacePermissions,
		}))
	}
}
