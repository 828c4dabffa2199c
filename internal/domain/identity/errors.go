package identity

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when an id is absent from both schemas.
	ErrNotFound = errors.New("identity not found")
	// ErrDuplicateEmail is returned when the email is taken in either schema.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUHID is returned when the UHID is already assigned.
	ErrDuplicateUHID = errors.New("uhid already assigned")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError collects per-field problems so a caller can show
// them all at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Fields = append(e.Fields, msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
