package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidCredentials indicates a failed operator login.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrCandidateNotFound indicates the candidate id does not exist.
type ErrCandidateNotFound struct {
	ID string
}

func (e *ErrCandidateNotFound) Error() string {
	return fmt.Sprintf("candidate not found: %s", e.ID)
}

// ErrValidation indicates a request failed validation.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrCandidateNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
