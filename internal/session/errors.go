package session

import "errors"

var (
	// ErrNotFound indicates an unknown or expired session id.
	ErrNotFound = errors.New("session not found")
	// ErrClosed indicates the session was closed while the call was made.
	ErrClosed = errors.New("session closed")
	// ErrLoadPending indicates the player's progress is still being loaded.
	ErrLoadPending = errors.New("progress is still loading")
	// ErrIdentityRequired indicates a sign-in without a user id.
	ErrIdentityRequired = errors.New("identity requires a user id")
)
