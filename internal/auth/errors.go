package auth

import "errors"

var (
	// ErrAuthFailure is returned for bad credentials. It never says which
	// part of the credentials was wrong.
	ErrAuthFailure = errors.New("invalid email address or password")

	// ErrNotAuthenticated is returned when the request scope carries no identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidToken is returned when a session token fails verification,
	// has expired, or refers to a revoked session.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrWeakSecret is returned when the token signing secret is too short.
	ErrWeakSecret = errors.New("session secret must be at least 32 bytes")

	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")

	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)
