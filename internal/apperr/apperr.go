package apperr

import (
	"errors"
	"fmt"
)

// Client-facing error taxonomy. Services return these sentinels (usually
// wrapped with context); the handler layer maps them to HTTP status codes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrDependency   = errors.New("dependency failure")
)

// Dependency wraps a collaborator failure (blob storage, mail, redis) so
// callers can match it with errors.Is(err, ErrDependency).
func Dependency(err error) error {
	return fmt.Errorf("%w: %v", ErrDependency, err)
}
