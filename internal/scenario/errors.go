package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes.
const (
	ErrSchema           = "E101" // document does not match the schema
	ErrDecode           = "E102" // YAML cannot be decoded
	ErrInvalidStep      = "E103" // step cannot be built
	ErrInvalidExpr      = "E104" // EL expression does not compile
	ErrEmptyLoopBody    = "E105" // as_long_as without steps
	ErrInvalidAssertion = "E106" // assertion cannot be built
	ErrNonIntegerValue  = "E107" // fractional operand for an integer-valued target
)

// ValidationError is one problem in a scenario file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is every problem found in a scenario file.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(errs), strings.Join(msgs, "; "))
}

// AsValidationErrors extracts validation errors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
