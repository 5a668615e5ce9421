package session

import "errors"

// Sentinel errors for callers mapping failures to API responses.
var (
	// ErrNotFound means the referenced candidate does not exist.
	ErrNotFound = errors.New("candidate not found")
	// ErrConflict means the operation clashes with the session's current
	// state, e.g. starting a second interview.
	ErrConflict = errors.New("session state conflict")
)
