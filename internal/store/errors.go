package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedRequest is returned when a write payload can't be parsed.
	ErrMalformedRequest = errors.New("invalid request")

	// ErrUnsupported is returned when a backend doesn't serve a resource.
	ErrUnsupported = errors.New("unsupported resource")
)

// IntegrationError wraps a failure of the underlying storage or network.
type IntegrationError struct {
	Op  string
	Err error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// NotFound returns an error wrapping ErrNotFound for the named entity,
// e.g. "Project not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// IsIntegration reports whether err is (or wraps) an IntegrationError.
func IsIntegration(err error) bool {
	var ie *IntegrationError
	return errors.As(err, &ie)
}
