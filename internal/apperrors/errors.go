// Package apperrors defines the error taxonomy shared across services and handlers.
package apperrors

import "errors"

var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail indicates a registration attempt with an already used email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAuthentication indicates bad credentials or a missing/invalid/expired token.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization indicates the authenticated user lacks the required role.
	ErrAuthorization = errors.New("insufficient permissions")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTokenExpired indicates the bearer token's embedded expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or a signature mismatch.
	ErrTokenInvalid = errors.New("token invalid")
)
