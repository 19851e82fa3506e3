package chain

import (
	"errors"
	"fmt"
)

// BuildError is returned when a chain cannot be assembled.
// Build errors are raised at the offending builder call, before any run.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// BuildErrorCode categorizes build errors.
type BuildErrorCode string

const (
	// ErrCodeEmptyBody indicates a loop body with no steps.
	ErrCodeEmptyBody BuildErrorCode = "EMPTY_BODY"

	// ErrCodeInvalidCondition indicates a loop condition that is nil or does not compile.
	ErrCodeInvalidCondition BuildErrorCode = "INVALID_CONDITION"
)

// ErrEmptyBody is the sentinel for loop bodies without steps.
var ErrEmptyBody = &BuildError{Code: ErrCodeEmptyBody, Message: "loop body needs at least one step"}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is matches any BuildError with the same code, so errors.Is(err, ErrEmptyBody) works.
func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	return ok && t.Code == e.Code
}

// IsEmptyBody returns true if err is an empty loop body error.
// Uses errors.As to handle wrapped errors.
func IsEmptyBody(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeEmptyBody
	}
	return false
}

// IsInvalidCondition returns true if err is an invalid loop condition error.
func IsInvalidCondition(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeInvalidCondition
	}
	return false
}
