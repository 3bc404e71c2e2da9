package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so a caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInvalidToken covers bad signatures, malformed payloads and expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized means the bearer token could not be resolved to a
	// principal.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrInactiveAccount means the principal exists but is disabled.
	ErrInactiveAccount = errors.New("inactive user")
	// ErrForbidden means the principal lacks the required capability.
	ErrForbidden = errors.New("not enough privileges")
	// ErrDuplicateUsername rejects registration of a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound reports an id that maps to no principal.
	ErrUserNotFound = errors.New("user not found")
)
