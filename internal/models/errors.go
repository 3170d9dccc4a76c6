package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError reports a missing or out-of-range field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Msg
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func required(field string) error {
	return &ValidationError{Field: field, Msg: "is required"}
}

func mustBeOneOf(field string, allowed []string) error {
	return &ValidationError{
		Field: field,
		Msg:   fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
	}
}

func oneOf(v string, allowed []string) bool {
	return slices.Contains(allowed, v)
}
