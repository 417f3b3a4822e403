package domain

import (
	"errors"
	"fmt"
)

// APIError is a structured failure reported by the marketplace backend.
// Message carries the server-provided, user-displayable text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

var (
	// ErrInvalidCredentials covers rejected login or registration input.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering an already-taken email.
	ErrUserExists = errors.New("user already exists")

	// ErrUnauthenticated is returned when an operation requires a live
	// session and none is present.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the session's role is not allowed to
	// reach the requested resource.
	ErrForbidden = errors.New("access forbidden")

	// ErrUnknownRole is returned when a dashboard is requested for a value
	// outside the closed role set.
	ErrUnknownRole = errors.New("unknown role")
)
