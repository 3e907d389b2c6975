package auth

import "errors"

// Every failure below is terminal for the request that produced it; nothing
// is retried internally. Handlers map these to HTTP statuses and must not
// leak which half of a composite check failed (ErrNotFound vs
// ErrBadCredentials share one user-visible message).
var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrWrongScope       = errors.New("invalid scope for token")
	ErrNotFound         = errors.New("user not found")
	ErrUnconfirmed      = errors.New("email not confirmed")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrTokenMismatch    = errors.New("token does not match stored value")
	ErrForbidden        = errors.New("role not allowed")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("account already exists")
)
