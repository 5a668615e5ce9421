package intake

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers deciding how to message a failed
// resume upload.
var (
	// ErrUnsupportedFormat marks a file type we deliberately do not parse.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrEmptyResume marks input that cleaned down to nothing.
	ErrEmptyResume = errors.New("resume contains no text")
)

// Error wraps a resume intake failure with its source (path or URL).
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("intake error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("intake error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
