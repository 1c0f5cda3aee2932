package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrForbidden = errors.New("access forbidden")
var ErrProjectNotFound = errors.New("project not found")
var ErrTaskNotFound = errors.New("task not found")
var ErrSessionNotFound = errors.New("no persisted session")
var ErrMalformedSession = errors.New("malformed persisted session")

// BackendError is a failure reported by the ProjectHub API itself, as opposed
// to a transport fault. The message is the human-readable text from the
// backend error payload and is safe to show to the user.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsAuthRejection reports whether the backend refused the request for
// credential or validation reasons rather than failing internally.
func (e *BackendError) IsAuthRejection() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
