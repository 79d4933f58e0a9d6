package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session layer
var (
	// Configuration errors
	ErrWeakSecret = errors.New("auth secret missing or shorter than the required minimum")

	// Token errors
	ErrInvalidPayload = errors.New("payload must be a non-nil JSON object")

	// Session errors
	ErrSessionCreationFailed = errors.New("session creation failed")
	ErrSessionUpdateFailed   = errors.New("session update failed")
	ErrSessionNotFound       = errors.New("session not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")

	// Backend errors
	ErrBackendUnavailable = errors.New("auth backend unavailable")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
