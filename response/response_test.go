package response_test

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	autherrors "github.com/grcops/go-session-server/internal/errors"
	"github.com/grcops/go-session-server/response"
	"github.com/grcops/go-session-server/token"
)

func TestHandleError(t *testing.T) {
	t.Run("verification errors keep their taxonomy", func(t *testing.T) {
		codec, err := token.New("0123456789abcdef0123456789abcdef")
		require.NoError(t, err)

		_, decryptErr := codec.Decrypt("not-a-token")
		envelope := response.HandleError(decryptErr)

		require.False(t, envelope.Success)
		require.Equal(t, http.StatusBadRequest, envelope.Status)
		require.Equal(t, "INVALID_TOKEN_FORMAT", envelope.StatusText)
	})

	t.Run("wrapped verification errors still classify", func(t *testing.T) {
		verr := &token.VerificationError{Kind: token.KindTokenExpired, Status: http.StatusUnauthorized, Message: "token has expired"}
		envelope := response.HandleError(errors.Wrap(verr, "auth.Service.Refresh"))

		require.Equal(t, "TOKEN_EXPIRED", envelope.StatusText)
		require.Equal(t, http.StatusUnauthorized, envelope.Status)
	})

	t.Run("sentinel errors map to stable status texts", func(t *testing.T) {
		cases := []struct {
			err        error
			status     int
			statusText string
		}{
			{autherrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
			{autherrors.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
			{autherrors.ErrInvalidPayload, http.StatusBadRequest, "INVALID_PAYLOAD"},
			{autherrors.ErrSessionCreationFailed, http.StatusInternalServerError, "SESSION_CREATION_FAILED"},
			{autherrors.ErrSessionUpdateFailed, http.StatusInternalServerError, "SESSION_UPDATE_FAILED"},
			{autherrors.ErrBackendUnavailable, http.StatusBadGateway, "BACKEND_UNAVAILABLE"},
		}

		for _, tc := range cases {
			envelope := response.HandleError(errors.Wrap(tc.err, "context"))
			require.Equal(t, tc.status, envelope.Status, tc.statusText)
			require.Equal(t, tc.statusText, envelope.StatusText)
			require.False(t, envelope.Success)
		}
	})

	t.Run("unknown errors become opaque internals", func(t *testing.T) {
		envelope := response.HandleError(errors.New("boom"))
		require.Equal(t, http.StatusInternalServerError, envelope.Status)
		require.Equal(t, "INTERNAL_SERVER_ERROR", envelope.StatusText)
	})
}

func TestSuccess(t *testing.T) {
	envelope := response.Success("done", map[string]any{"k": "v"})
	require.True(t, envelope.Success)
	require.Equal(t, http.StatusOK, envelope.Status)
	require.Equal(t, "OK", envelope.StatusText)
	require.Equal(t, map[string]any{"k": "v"}, envelope.Data)
}
