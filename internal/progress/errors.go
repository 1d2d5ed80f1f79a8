package progress

import "errors"

var (
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
	// ErrNotFound indicates the user has no progression document.
	ErrNotFound = errors.New("progress document not found")
	// ErrStoreRead wraps failures reading the document store.
	ErrStoreRead = errors.New("progress store read failed")
	// ErrStoreWrite wraps failures writing the document store.
	ErrStoreWrite = errors.New("progress store write failed")
)
