package authkit

import "errors"

var (
	// ErrMissingCredential is returned when a protected request carries
	// neither a bearer header nor a credential cookie.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredentials is returned on login when the password does
	// not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned on login when no account exists for the
	// given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned on registration when the email is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateNickname is returned on registration when the nickname
	// is already taken.
	ErrDuplicateNickname = errors.New("nickname already taken")
	// ErrRefreshRejected covers every refresh failure: expired, revoked,
	// superseded, unknown, or store unavailable. Callers cannot
	// distinguish these cases; the internal reason goes to the audit sink
	// only.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrSessionRejected is returned when an opaque session id does not
	// resolve to a live session.
	ErrSessionRejected = errors.New("session rejected")
)
