// Package common defines shared constants and sentinel errors used across
// the server layers of GophChat. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Caller errors: missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// Session errors.
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrIdentityNotFound = errors.New("identity not found")

	// Identity lifecycle errors. ErrInvalidCredential deliberately covers both
	// "no such user" and "wrong password".
	ErrConflict          = errors.New("conflict")
	ErrInvalidCredential = errors.New("invalid credential")

	// Collaborator failures.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMediaUploadFailed  = errors.New("media upload failed")

	// Live delivery failure. Never surfaced to the sender.
	ErrDeliveryPushFailed = errors.New("delivery push failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
