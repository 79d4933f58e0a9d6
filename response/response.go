// Package response provides the uniform API response envelope every handler
// returns, and the mapping from internal errors onto it.
package response

import (
	"encoding/json"
	"net/http"

	autherrors "github.com/grcops/go-session-server/internal/errors"
	"github.com/grcops/go-session-server/token"
)

// APIResponse is the envelope returned by every endpoint, success or failure.
// Consumers branch on Success and StatusText, never on Message.
type APIResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// Success builds a successful envelope.
func Success(message string, data any) APIResponse {
	return APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Status:     http.StatusOK,
		StatusText: "OK",
	}
}

// Error builds a failure envelope with an explicit status.
func Error(message string, status int, statusText string) APIResponse {
	return APIResponse{
		Success:    false,
		Message:    message,
		Status:     status,
		StatusText: statusText,
	}
}

// HandleError normalizes any downstream error into the envelope. Token
// verification failures keep their taxonomy; known sentinels map to stable
// status texts; everything else is an opaque internal error.
func HandleError(err error) APIResponse {
	if err == nil {
		return Error("unknown error", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
	}

	var verr *token.VerificationError
	if autherrors.As(err, &verr) {
		return Error(verr.Message, verr.HTTPStatus(), string(verr.Kind))
	}

	switch {
	case autherrors.Is(err, autherrors.ErrInvalidCredentials):
		return Error("invalid credentials", http.StatusUnauthorized, "INVALID_CREDENTIALS")
	case autherrors.Is(err, autherrors.ErrUnauthenticated):
		return Error("not authenticated", http.StatusUnauthorized, "UNAUTHENTICATED")
	case autherrors.Is(err, autherrors.ErrInvalidPayload):
		return Error("invalid payload", http.StatusBadRequest, "INVALID_PAYLOAD")
	case autherrors.Is(err, autherrors.ErrSessionCreationFailed):
		return Error("could not create session", http.StatusInternalServerError, "SESSION_CREATION_FAILED")
	case autherrors.Is(err, autherrors.ErrSessionUpdateFailed):
		return Error("could not update session", http.StatusInternalServerError, "SESSION_UPDATE_FAILED")
	case autherrors.Is(err, autherrors.ErrBackendUnavailable):
		return Error("auth backend unavailable", http.StatusBadGateway, "BACKEND_UNAVAILABLE")
	default:
		return Error(err.Error(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
	}
}

// Write serializes the envelope onto w with its own status code.
func Write(w http.ResponseWriter, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp)
}
