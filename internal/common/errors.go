// Package common defines shared constants and sentinel errors used across
// the authkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Credential errors. Wrong password and unknown user both collapse to
	// ErrInvalidCredentials so the outward behaviour carries no oracle.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrHashingFailure     = errors.New("password hashing failure")

	// Signed-token errors (access tokens and email-verification envelopes).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Refresh-session lifecycle errors. ErrRefreshTokenNotFound covers
	// absent, rotated, and expired secrets alike at the orchestrator
	// boundary; ErrRefreshTokenExpired stays engine-internal.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrCreateSessionFailure = errors.New("session creation failure")
	ErrRevokeSessionFailure = errors.New("session revocation failure")
)
