package authapi

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
)

// defaultErrorMessage is used when neither the body nor the status text says anything.
const defaultErrorMessage = "Network response was not ok"

// AuthError is a non-2xx response from the auth API.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap maps 401/403 to ErrTokenRejected and every other status to ErrRejected.
func (e *AuthError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return apperrors.ErrTokenRejected
	}
	return apperrors.ErrRejected
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{apperrors.ErrNetwork, e.Err}
}
