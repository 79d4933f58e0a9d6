package token

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a token verification failure. Every failure mode maps to
// exactly one kind, so callers can branch on the category without string
// matching on error messages.
type Kind string

const (
	// KindUnauthenticated means no token was supplied at all.
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	// KindInvalidTokenFormat means the token is not a three-segment compact JWT.
	KindInvalidTokenFormat Kind = "INVALID_TOKEN_FORMAT"
	// KindInvalidTokenSignature means the signature did not verify against the signing key.
	KindInvalidTokenSignature Kind = "INVALID_TOKEN_SIGNATURE"
	// KindTokenExpired means the token's expiry has passed beyond the configured leeway.
	KindTokenExpired Kind = "TOKEN_EXPIRED"
	// KindTokenVerificationFailed covers every other verification failure.
	KindTokenVerificationFailed Kind = "TOKEN_VERIFICATION_FAILED"
)

// VerificationError is the typed failure returned by Decrypt. Callers that
// need the failure category use errors.As or KindOf; callers that only care
// about authenticated-or-not can treat it as an opaque error.
type VerificationError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("token verification failed (%s): %s", e.Kind, e.Message)
}

// HTTPStatus returns the HTTP status code associated with the failure kind.
func (e *VerificationError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusUnauthorized
	}
	return e.Status
}

func newVerificationError(kind Kind, message string) *VerificationError {
	status := http.StatusUnauthorized
	if kind == KindInvalidTokenFormat {
		status = http.StatusBadRequest
	}
	return &VerificationError{Kind: kind, Status: status, Message: message}
}

// KindOf extracts the verification failure kind from err, or "" if err is not
// a VerificationError.
func KindOf(err error) Kind {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}
