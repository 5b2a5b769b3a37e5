// Package common defines shared sentinel errors used across the service
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Generic service-level errors.
	ErrorInternal = errors.New("internal error")

	// Token verification errors. ErrInvalidToken covers malformed, expired,
	// and badly signed tokens; the verifier retries it once against a
	// refreshed key set before surfacing it.
	ErrInvalidToken        = errors.New("invalid token")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidClient       = errors.New("invalid client id")
	ErrUnsupportedTokenUse = errors.New("unsupported token use")

	// Identity resolution errors.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUnknownIdentity  = errors.New("unknown identity")

	// Object-access errors.
	ErrUnsupportedMediaType     = errors.New("unsupported media type")
	ErrUploadVerificationFailed = errors.New("upload verification failed")
	ErrForbidden                = errors.New("forbidden")

	// ErrConfiguration marks missing or inconsistent startup configuration.
	// It is fatal and never recoverable per-request.
	ErrConfiguration = errors.New("configuration error")
)
