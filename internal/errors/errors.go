package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard and its clients
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors
	ErrNoToken        = errors.New("no token")
	ErrTokenRejected  = errors.New("token rejected")
	ErrTokenExpired   = errors.New("token expired")
	ErrNoRefreshToken = errors.New("no refresh token")

	// Transport errors
	ErrNetwork  = errors.New("network error")
	ErrRejected = errors.New("request rejected")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCorruptStore     = errors.New("corrupt store")

	// General errors
	ErrNotFound = errors.New("not found")
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
